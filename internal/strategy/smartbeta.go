package strategy

import (
	"fmt"

	"portfoliolab/types"
)

func init() {
	Register(types.StrategySmartBeta, func(cfg types.StrategyConfig, s Settings) (Generator, error) {
		if len(cfg.FactorWeights) == 0 {
			return nil, ErrNoFactorWeights
		}
		src := s.Factors
		if src == nil {
			src = StaticFactors(cfg.FactorScores)
		}
		return newSmartBeta(cfg.Parameters, cfg.FactorWeights, src, s.Combiner), nil
	})
}

type smartBeta struct {
	threshold float64
	weights   map[string]float64
	factors   FactorSource
	combine   Combiner
}

func newSmartBeta(p types.StrategyParameters, weights map[string]float64, src FactorSource, combine Combiner) *smartBeta {
	w := make(map[string]float64, len(weights))
	for k, v := range weights {
		w[k] = v
	}
	return &smartBeta{threshold: p.Threshold, weights: w, factors: src, combine: combine}
}

func (s *smartBeta) Type() types.StrategyType { return types.StrategySmartBeta }

func (s *smartBeta) GenerateSignals(view types.MarketView) []types.Signal {
	var signals []types.Signal
	for _, asset := range view.Assets() {
		scores, ok := s.factors.Scores(asset, view.Date)
		if !ok {
			continue
		}
		score := s.combine(s.weights, scores)

		switch {
		case score > s.threshold:
			signals = append(signals, types.NewSignal(asset, types.SideTypeBuy, score,
				fmt.Sprintf("factor score %.4f above %.4f", score, s.threshold), view.Date))
		case score < -s.threshold:
			signals = append(signals, types.NewSignal(asset, types.SideTypeSell, score,
				fmt.Sprintf("factor score %.4f below -%.4f", score, s.threshold), view.Date))
		}
	}
	return signals
}
