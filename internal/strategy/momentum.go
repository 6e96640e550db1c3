package strategy

import (
	"fmt"

	"portfoliolab/types"
)

func init() {
	Register(types.StrategyMomentum, func(cfg types.StrategyConfig, _ Settings) (Generator, error) {
		if err := requireLookback(cfg); err != nil {
			return nil, err
		}
		return newMomentum(cfg.Parameters), nil
	})
}

type momentum struct {
	lookback  int
	threshold float64
}

func newMomentum(p types.StrategyParameters) *momentum {
	return &momentum{lookback: p.Lookback, threshold: p.Threshold}
}

func (m *momentum) Type() types.StrategyType { return types.StrategyMomentum }

func (m *momentum) GenerateSignals(view types.MarketView) []types.Signal {
	var signals []types.Signal
	for _, asset := range view.Assets() {
		hist := view.History[asset]
		// price[t-lookback] must exist
		if len(hist) <= m.lookback {
			continue
		}
		now := hist[len(hist)-1].Price.InexactFloat64()
		then := hist[len(hist)-1-m.lookback].Price.InexactFloat64()
		mom := (now - then) / then

		switch {
		case mom > m.threshold:
			signals = append(signals, types.NewSignal(asset, types.SideTypeBuy, mom,
				fmt.Sprintf("momentum %.4f above %.4f", mom, m.threshold), view.Date))
		case mom < -m.threshold:
			signals = append(signals, types.NewSignal(asset, types.SideTypeSell, mom,
				fmt.Sprintf("momentum %.4f below -%.4f", mom, m.threshold), view.Date))
		}
	}
	return signals
}
