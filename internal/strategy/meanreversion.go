package strategy

import (
	"fmt"

	"portfoliolab/internal/metrics"
	"portfoliolab/types"
)

func init() {
	Register(types.StrategyMeanReversion, func(cfg types.StrategyConfig, _ Settings) (Generator, error) {
		if err := requireLookback(cfg); err != nil {
			return nil, err
		}
		return newMeanReversion(cfg.Parameters), nil
	})
}

// meanReversion trades the z-score of the latest price against the trailing
// window, the window including today.
type meanReversion struct {
	lookback  int
	threshold float64
}

func newMeanReversion(p types.StrategyParameters) *meanReversion {
	return &meanReversion{lookback: p.Lookback, threshold: p.Threshold}
}

func (m *meanReversion) Type() types.StrategyType { return types.StrategyMeanReversion }

func (m *meanReversion) GenerateSignals(view types.MarketView) []types.Signal {
	var signals []types.Signal
	for _, asset := range view.Assets() {
		hist := view.History[asset]
		if len(hist) < m.lookback {
			continue
		}
		z := zScore(types.Closes(hist[len(hist)-m.lookback:]))

		switch {
		case z > m.threshold:
			signals = append(signals, types.NewSignal(asset, types.SideTypeSell, z,
				fmt.Sprintf("z-score %.4f above %.4f", z, m.threshold), view.Date))
		case z < -m.threshold:
			signals = append(signals, types.NewSignal(asset, types.SideTypeBuy, z,
				fmt.Sprintf("z-score %.4f below -%.4f", z, m.threshold), view.Date))
		}
	}
	return signals
}

// zScore of the last element. A flat window has no spread and scores 0.
func zScore(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	std := metrics.PopulationStdDev(window)
	if std == 0 {
		return 0
	}
	return (window[len(window)-1] - metrics.Mean(window)) / std
}
