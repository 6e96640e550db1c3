package engine

import (
	"time"

	"github.com/gofrs/uuid"

	"portfoliolab/internal/drawdown"
	"portfoliolab/internal/metrics"
	"portfoliolab/types"
)

// Result is the structured outcome of a run. Everything except RunID is a
// pure function of the inputs.
type Result struct {
	RunID          uuid.UUID            `json:"runId"`
	Strategy       types.StrategyConfig `json:"strategy"`
	History        []types.Snapshot     `json:"history"`
	Trades         []types.Trade        `json:"trades"`
	Skipped        []types.SkippedTrade `json:"skipped"`
	RebalanceDates []time.Time          `json:"rebalanceDates"`
	Performance    metrics.Performance  `json:"performance"`
	Risk           metrics.Risk         `json:"risk"`
	Drawdown       drawdown.Report      `json:"drawdown"`
	Cancelled      bool                 `json:"cancelled"`
}

// LastSnapshot returns the final committed valuation.
func (r *Result) LastSnapshot() (types.Snapshot, bool) {
	if len(r.History) == 0 {
		return types.Snapshot{}, false
	}
	return r.History[len(r.History)-1], true
}

func generateResult(cfg types.StrategyConfig, p *portfolio, benchmark []types.PricePoint, riskFreeRate float64) *Result {
	trades := nonNil(p.trades)
	return &Result{
		RunID:          uuid.Must(uuid.NewV4()),
		Strategy:       cfg,
		History:        nonNil(p.history),
		Trades:         trades,
		Skipped:        nonNil(p.skipped),
		RebalanceDates: nonNil(p.rebalanceDates),
		Performance:    metrics.Compute(p.history, trades, benchmark, riskFreeRate),
		Risk:           metrics.ComputeRisk(p.history),
		Drawdown:       drawdown.Analyze(p.history),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
