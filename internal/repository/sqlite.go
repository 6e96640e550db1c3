package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"portfoliolab/types"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS daily_prices(
	ticker TEXT NOT NULL,
	date   TEXT NOT NULL,
	price  TEXT NOT NULL,
	volume TEXT NOT NULL DEFAULT '0',
	PRIMARY KEY (ticker, date)
)`

// SQLite is a file-backed price cache. Prices are stored as decimal text so
// they round-trip exactly.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// SavePrices upserts every point of series.
func (s *SQLite) SavePrices(ctx context.Context, series types.PriceSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO daily_prices(ticker, date, price, volume) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range series.Points {
		_, err := stmt.ExecContext(ctx, string(series.Asset), types.Day(p.Date).Format(time.DateOnly), p.Price.String(), p.Volume.String())
		if err != nil {
			return fmt.Errorf("save %s %s: %w", series.Asset, p.Date.Format(time.DateOnly), err)
		}
	}
	return tx.Commit()
}

// GetHistoricalPrices implements the same contract as Database.GetHistoricalPrices.
func (s *SQLite) GetHistoricalPrices(ctx context.Context, asset types.AssetID, start, end time.Time) (types.PriceSeries, error) {
	start, end, err := boundedRange(start, end)
	if err != nil {
		return types.PriceSeries{}, err
	}

	var known int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM daily_prices WHERE ticker = ?`, string(asset)).Scan(&known)
	if err != nil {
		return types.PriceSeries{}, err
	}
	if known == 0 {
		return types.PriceSeries{}, fmt.Errorf("ticker %s %w", asset, ErrAssetNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, price, volume FROM daily_prices WHERE ticker = ? AND date >= ? AND date <= ? ORDER BY date ASC`,
		string(asset), types.Day(start).Format(time.DateOnly), types.Day(end).Format(time.DateOnly))
	if err != nil {
		return types.PriceSeries{}, err
	}
	defer rows.Close()

	var out []priceRow
	for rows.Next() {
		var (
			date          string
			price, volume decimal.Decimal
		)
		if err := rows.Scan(&date, &price, &volume); err != nil {
			return types.PriceSeries{}, err
		}
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return types.PriceSeries{}, fmt.Errorf("parse date %q: %w", date, err)
		}
		out = append(out, priceRow{Date: d, Price: price, Volume: volume})
	}
	if err := rows.Err(); err != nil {
		return types.PriceSeries{}, err
	}
	return convertPrices(asset, out), nil
}
