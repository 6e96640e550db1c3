package engine

import (
	"testing"
	"time"

	"portfoliolab/types"
)

func TestIsDue(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		name string
		freq types.RebalanceFrequency
		last time.Time
		date time.Time
		want bool
	}{
		{"daily", types.RebalanceDaily, date(2024, 1, 2), date(2024, 1, 3), true},
		{"weekly too soon", types.RebalanceWeekly, date(2024, 1, 1), date(2024, 1, 7), false},
		{"weekly after seven days", types.RebalanceWeekly, date(2024, 1, 1), date(2024, 1, 8), true},
		{"weekly across a gap", types.RebalanceWeekly, date(2024, 1, 1), date(2024, 1, 15), true},
		{"monthly same month", types.RebalanceMonthly, date(2024, 1, 2), date(2024, 1, 31), false},
		{"monthly next month", types.RebalanceMonthly, date(2024, 1, 31), date(2024, 2, 1), true},
		{"monthly same month next year", types.RebalanceMonthly, date(2023, 1, 5), date(2024, 1, 5), true},
		{"quarterly same quarter", types.RebalanceQuarterly, date(2024, 1, 2), date(2024, 3, 29), false},
		{"quarterly next quarter", types.RebalanceQuarterly, date(2024, 3, 29), date(2024, 4, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDue(tt.freq, tt.last, tt.date); got != tt.want {
				t.Errorf("isDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRebalancerFirstEvaluationFires(t *testing.T) {
	r := newRebalancer(types.RebalanceQuarterly)
	if !r.due(day0) {
		t.Fatal("first evaluation should fire")
	}
	if r.due(dayN(1)) {
		t.Fatal("second day of the same quarter should not fire")
	}
	if !r.due(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("next quarter should fire")
	}
}
