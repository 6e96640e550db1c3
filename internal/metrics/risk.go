package metrics

import (
	"portfoliolab/types"
)

// Risk holds historical-simulation tail statistics of daily returns. VaR and
// CVaR are expressed as returns, so losses are negative.
type Risk struct {
	VaR95             float64 `json:"var95"`
	CVaR95            float64 `json:"cvar95"`
	VaR99             float64 `json:"var99"`
	CVaR99            float64 `json:"cvar99"`
	DownsideDeviation float64 `json:"downsideDeviation"`
	BestDay           float64 `json:"bestDay"`
	WorstDay          float64 `json:"worstDay"`
}

func ComputeRisk(history []types.Snapshot) Risk {
	returns := Returns(equity(history))
	if len(returns) == 0 {
		return Risk{}
	}
	return Risk{
		VaR95:             ValueAtRisk(returns, 0.95),
		CVaR95:            ConditionalValueAtRisk(returns, 0.95),
		VaR99:             ValueAtRisk(returns, 0.99),
		CVaR99:            ConditionalValueAtRisk(returns, 0.99),
		DownsideDeviation: DownsideDeviation(returns, 0),
		BestDay:           Quantile(returns, 1),
		WorstDay:          Quantile(returns, 0),
	}
}

// ValueAtRisk is the (1-confidence) quantile of the empirical returns.
func ValueAtRisk(returns []float64, confidence float64) float64 {
	return Quantile(returns, 1-confidence)
}

// ConditionalValueAtRisk averages every return at or below the VaR.
func ConditionalValueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	threshold := ValueAtRisk(returns, confidence)
	var tail []float64
	for _, r := range returns {
		if r <= threshold {
			tail = append(tail, r)
		}
	}
	return Mean(tail)
}
