package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"portfoliolab/types"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

// makeSeries quotes one price per consecutive calendar day starting at day0.
func makeSeries(asset types.AssetID, prices ...float64) types.PriceSeries {
	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = types.PricePoint{Date: dayN(i), Price: decimal.NewFromFloat(p), Volume: decimal.NewFromInt(1000)}
	}
	return types.PriceSeries{Asset: asset, Points: points}
}

func flat(price float64, days int) []float64 {
	out := make([]float64, days)
	for i := range out {
		out[i] = price
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func priceData(series ...types.PriceSeries) map[types.AssetID]types.PriceSeries {
	out := make(map[types.AssetID]types.PriceSeries, len(series))
	for _, s := range series {
		out[s.Asset] = s
	}
	return out
}
