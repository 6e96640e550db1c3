package types

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2024-01-02 05:00 in UTC+9 is still 2024-01-01 in UTC
	got := Day(time.Date(2024, 1, 2, 5, 0, 0, 0, loc))
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("Day() = %s, want %s", got, want)
	}
}

func TestPriceSeriesValidate(t *testing.T) {
	d := func(n int) time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n) }
	p := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	tests := []struct {
		name    string
		points  []PricePoint
		wantErr error
	}{
		{"empty", nil, nil},
		{"ordered", []PricePoint{{Date: d(0), Price: p("1")}, {Date: d(2), Price: p("2")}}, nil},
		{"duplicate date", []PricePoint{{Date: d(0), Price: p("1")}, {Date: d(0).Add(time.Hour), Price: p("2")}}, ErrUnorderedSeries},
		{"backwards", []PricePoint{{Date: d(1), Price: p("1")}, {Date: d(0), Price: p("2")}}, ErrUnorderedSeries},
		{"zero price", []PricePoint{{Date: d(0), Price: p("0")}}, ErrNonPositive},
		{"negative price", []PricePoint{{Date: d(0), Price: p("-3")}}, ErrNonPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PriceSeries{Asset: "AAPL", Points: tt.points}.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRebalanceFrequency(t *testing.T) {
	tests := []struct {
		in      string
		want    RebalanceFrequency
		wantErr bool
	}{
		{"", RebalanceDaily, false},
		{"daily", RebalanceDaily, false},
		{"W", RebalanceWeekly, false},
		{"Monthly", RebalanceMonthly, false},
		{"q", RebalanceQuarterly, false},
		{"hourly", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRebalanceFrequency(tt.in)
		if tt.wantErr != (err != nil) || got != tt.want {
			t.Errorf("ParseRebalanceFrequency(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestSortAssetIDs(t *testing.T) {
	in := []AssetID{"MSFT", "AAPL", "GOOG"}
	got := SortAssetIDs(in)
	if got[0] != "AAPL" || got[1] != "GOOG" || got[2] != "MSFT" {
		t.Errorf("SortAssetIDs() = %v", got)
	}
	if in[0] != "MSFT" {
		t.Error("input was reordered")
	}
}
