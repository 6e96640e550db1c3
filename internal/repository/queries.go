package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type assetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
}

type priceRow struct {
	Date   time.Time
	Price  decimal.Decimal
	Volume decimal.Decimal
}

type getDailyPricesParams struct {
	AssetID   int32
	StartDate time.Time
	EndDate   time.Time
}

const getAssetByTicker = `SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

const getDailyPrices = `SELECT date, price, volume
FROM daily_prices
WHERE asset_id = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC`

type queries struct {
	db *pgxpool.Pool
}

func (q *queries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	var a assetRow
	err := q.db.QueryRow(ctx, getAssetByTicker, ticker).
		Scan(&a.ID, &a.Ticker, &a.Name, &a.Type, &a.CreatedAt, &a.ModifiedAt)
	return a, err
}

func (q *queries) GetDailyPrices(ctx context.Context, arg getDailyPricesParams) ([]priceRow, error) {
	rows, err := q.db.Query(ctx, getDailyPrices, arg.AssetID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []priceRow
	for rows.Next() {
		var r priceRow
		if err := rows.Scan(&r.Date, &r.Price, &r.Volume); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
