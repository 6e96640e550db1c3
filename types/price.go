package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnorderedSeries = errors.New("price series dates are not strictly increasing")
	ErrNonPositive     = errors.New("price series contains a non-positive price")
)

// PricePoint is a single daily quote.
type PricePoint struct {
	Date   time.Time       `json:"date"`
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

// PriceSeries is the ordered quote history of one asset.
type PriceSeries struct {
	Asset  AssetID      `json:"asset"`
	Points []PricePoint `json:"points"`
}

// Day truncates t to midnight UTC. All simulated dates are normalised with it.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks that dates are strictly increasing and prices are positive.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if !p.Price.IsPositive() {
			return fmt.Errorf("%s at %s: %w", s.Asset, p.Date.Format(time.DateOnly), ErrNonPositive)
		}
		if i > 0 && !Day(p.Date).After(Day(s.Points[i-1].Date)) {
			return fmt.Errorf("%s at %s: %w", s.Asset, p.Date.Format(time.DateOnly), ErrUnorderedSeries)
		}
	}
	return nil
}

// Closes converts the prices to float64 for statistics.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price.InexactFloat64()
	}
	return out
}
