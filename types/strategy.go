package types

type StrategyType string

const (
	StrategyMomentum      StrategyType = "momentum"
	StrategyMeanReversion StrategyType = "meanReversion"
	StrategyBuyAndHold    StrategyType = "buyAndHold"
	StrategySmartBeta     StrategyType = "smartBeta"
	StrategyBreakout      StrategyType = "breakout"
	StrategyRSI           StrategyType = "rsi"
)

// StrategyParameters are shared by the signal generators that need a window.
type StrategyParameters struct {
	Lookback  int     `json:"lookback" yaml:"lookback"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// FactorScores maps asset -> factor name -> score.
type FactorScores map[AssetID]map[string]float64

type StrategyConfig struct {
	Type       StrategyType       `json:"type"`
	Universe   []AssetID          `json:"universe"`
	Parameters StrategyParameters `json:"parameters"`
	Rebalance  RebalanceFrequency `json:"rebalanceFrequency"`

	// Smart beta inputs, ignored by the other strategies.
	FactorWeights map[string]float64 `json:"factorWeights,omitempty"`
	FactorScores  FactorScores       `json:"factorScores,omitempty"`
}
