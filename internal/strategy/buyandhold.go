package strategy

import (
	"portfoliolab/types"
)

func init() {
	Register(types.StrategyBuyAndHold, func(types.StrategyConfig, Settings) (Generator, error) {
		return newBuyAndHold(), nil
	})
}

// buyAndHold buys every asset once, on the first rebalance it is quoted on.
// Assets already held are never bought again.
type buyAndHold struct {
	bought map[types.AssetID]bool
}

func newBuyAndHold() *buyAndHold {
	return &buyAndHold{bought: make(map[types.AssetID]bool)}
}

func (b *buyAndHold) Type() types.StrategyType { return types.StrategyBuyAndHold }

func (b *buyAndHold) GenerateSignals(view types.MarketView) []types.Signal {
	var signals []types.Signal
	for _, asset := range view.Assets() {
		if b.bought[asset] {
			continue
		}
		b.bought[asset] = true
		if view.Portfolio.Quantity(asset).IsPositive() {
			continue
		}
		signals = append(signals, types.NewSignal(asset, types.SideTypeBuy, 1, "initial buy and hold allocation", view.Date))
	}
	return signals
}
