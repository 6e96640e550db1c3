package repository

import (
	"context"
	"time"

	"portfoliolab/types"
)

// GetHistoricalPrices returns the daily quotes of asset within [start, end],
// ascending. A zero start or end leaves that side open. An asset without
// quotes in range yields an empty series.
func (db *Database) GetHistoricalPrices(ctx context.Context, asset types.AssetID, start, end time.Time) (types.PriceSeries, error) {
	start, end, err := boundedRange(start, end)
	if err != nil {
		return types.PriceSeries{}, err
	}
	a, err := db.GetAssetByTicker(ctx, string(asset))
	if err != nil {
		return types.PriceSeries{}, err
	}
	rows, err := db.prices.GetDailyPrices(ctx, getDailyPricesParams{
		AssetID:   int32(a.Id),
		StartDate: types.Day(start),
		EndDate:   types.Day(end),
	})
	if err != nil {
		return types.PriceSeries{}, err
	}
	return convertPrices(asset, rows), nil
}

func convertPrices(asset types.AssetID, rows []priceRow) types.PriceSeries {
	points := make([]types.PricePoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, types.PricePoint{
			Date:   types.Day(r.Date),
			Price:  r.Price,
			Volume: r.Volume,
		})
	}
	return types.PriceSeries{Asset: asset, Points: points}
}
