package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"portfoliolab/types"
)

func init() {
	Register(types.StrategyBreakout, func(cfg types.StrategyConfig, _ Settings) (Generator, error) {
		if err := requireLookback(cfg); err != nil {
			return nil, err
		}
		return &breakout{lookback: cfg.Parameters.Lookback}, nil
	})
}

// breakout is a Donchian channel on closing prices: buy a close above the
// highest close of the preceding lookback days, sell a close below the lowest.
type breakout struct {
	lookback int
}

func (b *breakout) Type() types.StrategyType { return types.StrategyBreakout }

func (b *breakout) GenerateSignals(view types.MarketView) []types.Signal {
	var signals []types.Signal
	for _, asset := range view.Assets() {
		hist := view.History[asset]
		// need lookback completed days plus today
		if len(hist) <= b.lookback {
			continue
		}
		cur := hist[len(hist)-1].Price
		highest, lowest := donchianHighLow(hist[len(hist)-1-b.lookback : len(hist)-1])

		switch {
		case cur.GreaterThan(highest):
			strength := cur.Sub(highest).Div(highest).InexactFloat64()
			signals = append(signals, types.NewSignal(asset, types.SideTypeBuy, strength,
				fmt.Sprintf("close %s above %d-day high %s", cur, b.lookback, highest), view.Date))
		case cur.LessThan(lowest):
			strength := cur.Sub(lowest).Div(lowest).InexactFloat64()
			signals = append(signals, types.NewSignal(asset, types.SideTypeSell, strength,
				fmt.Sprintf("close %s below %d-day low %s", cur, b.lookback, lowest), view.Date))
		}
	}
	return signals
}

// donchianHighLow returns the channel bounds of points.
func donchianHighLow(points []types.PricePoint) (decimal.Decimal, decimal.Decimal) {
	if len(points) == 0 {
		return decimal.Zero, decimal.Zero
	}
	highest := points[0].Price
	lowest := points[0].Price
	for _, p := range points[1:] {
		highest = decimal.Max(highest, p.Price)
		lowest = decimal.Min(lowest, p.Price)
	}
	return highest, lowest
}
