package engine

import (
	"time"

	"portfoliolab/types"
)

// rebalancer decides whether a trading day is a rebalance day. The first
// evaluation always fires.
type rebalancer struct {
	frequency types.RebalanceFrequency
	last      time.Time
	fired     bool
}

func newRebalancer(f types.RebalanceFrequency) *rebalancer {
	return &rebalancer{frequency: f}
}

// due reports whether date is a rebalance day and, if so, records it.
func (r *rebalancer) due(date time.Time) bool {
	if !r.fired || isDue(r.frequency, r.last, date) {
		r.fired = true
		r.last = date
		return true
	}
	return false
}

func isDue(f types.RebalanceFrequency, last, date time.Time) bool {
	switch f {
	case types.RebalanceWeekly:
		return date.Sub(last) >= 7*24*time.Hour
	case types.RebalanceMonthly:
		return date.Year() != last.Year() || date.Month() != last.Month()
	case types.RebalanceQuarterly:
		return date.Year() != last.Year() || quarter(date) != quarter(last)
	default:
		return true
	}
}

func quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
