package strategy

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-ta/indicators"

	"portfoliolab/types"
)

// defaultRSIBand is the distance from 50 that triggers a signal when no
// threshold is configured, giving the usual 70/30 levels.
const defaultRSIBand = 20

func init() {
	Register(types.StrategyRSI, func(cfg types.StrategyConfig, _ Settings) (Generator, error) {
		if err := requireLookback(cfg); err != nil {
			return nil, err
		}
		band := cfg.Parameters.Threshold
		if band == 0 {
			band = defaultRSIBand
		}
		if band >= 50 {
			return nil, fmt.Errorf("rsi band %.2f: %w", band, ErrInvalidThreshold)
		}
		return &rsi{period: cfg.Parameters.Lookback, high: 50 + band, low: 50 - band}, nil
	})
}

// rsi sells overbought and buys oversold assets. Threshold is the band
// half-width around 50.
type rsi struct {
	period    int
	high, low float64
}

func (r *rsi) Type() types.StrategyType { return types.StrategyRSI }

func (r *rsi) GenerateSignals(view types.MarketView) []types.Signal {
	var signals []types.Signal
	for _, asset := range view.Assets() {
		hist := view.History[asset]
		if len(hist) <= r.period {
			continue
		}
		values := indicators.RSI(types.Closes(hist), r.period)
		if len(values) == 0 {
			continue
		}
		latest := values[len(values)-1]
		if math.IsNaN(latest) || math.IsInf(latest, 0) {
			continue
		}
		strength := (50 - latest) / 50

		switch {
		case latest >= r.high:
			signals = append(signals, types.NewSignal(asset, types.SideTypeSell, strength,
				fmt.Sprintf("RSI %.2f at or above %.2f", latest, r.high), view.Date))
		case latest <= r.low:
			signals = append(signals, types.NewSignal(asset, types.SideTypeBuy, strength,
				fmt.Sprintf("RSI %.2f at or below %.2f", latest, r.low), view.Date))
		}
	}
	return signals
}
