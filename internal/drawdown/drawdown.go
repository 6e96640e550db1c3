// Package drawdown derives peak, trough and recovery episodes from an equity curve.
package drawdown

import (
	"time"

	"portfoliolab/types"
)

// Point is the drawdown state on one day.
type Point struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Peak     float64   `json:"peak"`
	Drawdown float64   `json:"drawdown"`
}

// Period is one excursion below a running peak. RecoveryDate is nil when the
// curve ends before regaining the peak.
type Period struct {
	PeakDate     time.Time  `json:"peakDate"`
	PeakValue    float64    `json:"peakValue"`
	StartDate    time.Time  `json:"startDate"`
	TroughDate   time.Time  `json:"troughDate"`
	TroughValue  float64    `json:"troughValue"`
	Depth        float64    `json:"depth"`
	RecoveryDate *time.Time `json:"recoveryDate"`
	DurationDays int        `json:"durationDays"`
}

// Recovered reports whether the peak was regained.
func (p Period) Recovered() bool {
	return p.RecoveryDate != nil
}

type Report struct {
	MaxDrawdown         float64  `json:"maxDrawdown"`
	CurrentDrawdown     float64  `json:"currentDrawdown"`
	LongestDurationDays int      `json:"longestDurationDays"`
	Periods             []Period `json:"periods"`
	Series              []Point  `json:"series"`
}

// Analyze walks the snapshots once. Drawdowns are <= 0; a non-decreasing curve
// yields MaxDrawdown 0 and no periods.
func Analyze(history []types.Snapshot) Report {
	report := Report{Periods: []Period{}, Series: make([]Point, 0, len(history))}
	if len(history) == 0 {
		return report
	}

	var (
		peak     float64
		peakDate time.Time
		open     *Period
	)
	for i, snap := range history {
		value := snap.TotalValue.InexactFloat64()
		if i == 0 || value >= peak {
			if open != nil {
				recovered := snap.Date
				open.RecoveryDate = &recovered
				open.DurationDays = days(open.StartDate, recovered)
				report.Periods = append(report.Periods, *open)
				open = nil
			}
			peak = value
			peakDate = snap.Date
		}

		dd := ratio(value, peak)
		report.Series = append(report.Series, Point{Date: snap.Date, Value: value, Peak: peak, Drawdown: dd})
		if dd < report.MaxDrawdown {
			report.MaxDrawdown = dd
		}
		if dd >= 0 {
			continue
		}

		if open == nil {
			open = &Period{
				PeakDate:    peakDate,
				PeakValue:   peak,
				StartDate:   snap.Date,
				TroughDate:  snap.Date,
				TroughValue: value,
				Depth:       dd,
			}
		} else if dd < open.Depth {
			open.TroughDate = snap.Date
			open.TroughValue = value
			open.Depth = dd
		}
	}

	last := report.Series[len(report.Series)-1]
	report.CurrentDrawdown = last.Drawdown
	if open != nil {
		open.DurationDays = days(open.StartDate, last.Date)
		report.Periods = append(report.Periods, *open)
	}
	for _, p := range report.Periods {
		if p.DurationDays > report.LongestDurationDays {
			report.LongestDurationDays = p.DurationDays
		}
	}
	return report
}

// MaxDrawdown of a plain value series, 0 for fewer than two values.
func MaxDrawdown(values []float64) float64 {
	var peak, maxDD float64
	for i, v := range values {
		if i == 0 || v > peak {
			peak = v
		}
		if dd := ratio(v, peak); dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func ratio(value, peak float64) float64 {
	if peak <= 0 {
		return 0
	}
	return (value - peak) / peak
}

func days(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
