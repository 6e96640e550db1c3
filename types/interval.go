package types

import (
	"fmt"
	"strings"
)

type RebalanceFrequency string

const (
	RebalanceDaily     RebalanceFrequency = "daily"
	RebalanceWeekly    RebalanceFrequency = "weekly"
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
)

var ConvertRebalanceFrequency = map[string]RebalanceFrequency{
	"daily":     RebalanceDaily,
	"d":         RebalanceDaily,
	"weekly":    RebalanceWeekly,
	"w":         RebalanceWeekly,
	"monthly":   RebalanceMonthly,
	"m":         RebalanceMonthly,
	"quarterly": RebalanceQuarterly,
	"q":         RebalanceQuarterly,
}

// ParseRebalanceFrequency accepts the long or single-letter form, case-insensitive.
// An empty string means daily.
func ParseRebalanceFrequency(s string) (RebalanceFrequency, error) {
	if s == "" {
		return RebalanceDaily, nil
	}
	f, ok := ConvertRebalanceFrequency[strings.ToLower(s)]
	if !ok {
		return "", fmt.Errorf("unknown rebalance frequency %q", s)
	}
	return f, nil
}
