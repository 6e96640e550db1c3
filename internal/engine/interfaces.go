package engine

import (
	"context"
	"time"

	"portfoliolab/types"
)

// PriceProvider is the external source of historical quotes. Returned series
// must be ascending and must not contain dates outside [start, end].
type PriceProvider interface {
	GetHistoricalPrices(ctx context.Context, asset types.AssetID, start, end time.Time) (types.PriceSeries, error)
}

type signalGenerator interface {
	Type() types.StrategyType
	GenerateSignals(view types.MarketView) []types.Signal
}
