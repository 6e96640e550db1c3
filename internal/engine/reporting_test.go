package engine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"portfoliolab/types"
)

func TestResultJSON(t *testing.T) {
	// day 1 sells with nothing held, day 2 buys
	prices := []float64{10, 9, 12, 12}
	cfg := types.StrategyConfig{
		Type:       types.StrategyMomentum,
		Universe:   []types.AssetID{"AAA"},
		Parameters: types.StrategyParameters{Lookback: 1, Threshold: 0.05},
	}
	result, err := RunBacktest(context.Background(), cfg, priceData(makeSeries("AAA", prices...)), decimal.NewFromInt(1000), Options{})
	if err != nil {
		t.Fatalf("RunBacktest: %v", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"runId"`, `"history"`, `"trades"`, `"skipped"`, `"performance"`, `"risk"`, `"drawdown"`} {
		if !strings.Contains(string(out), key) {
			t.Errorf("result JSON has no %s", key)
		}
	}
}

func TestResultEmptyCollectionsEncodeAsArrays(t *testing.T) {
	cfg := types.StrategyConfig{Type: types.StrategyMomentum, Universe: []types.AssetID{"AAA"}, Parameters: types.StrategyParameters{Lookback: 30}}
	result, err := RunBacktest(context.Background(), cfg, priceData(makeSeries("AAA", flat(10, 3)...)), decimal.NewFromInt(1000), Options{})
	if err != nil {
		t.Fatalf("RunBacktest: %v", err)
	}
	if len(result.Trades) != 0 {
		t.Fatalf("lookback longer than history should not trade, got %d trades", len(result.Trades))
	}
	out, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"trades":[]`) || !strings.Contains(string(out), `"periods":[]`) {
		t.Errorf("empty collections should encode as []: %s", out)
	}
}

func TestLastSnapshot(t *testing.T) {
	var r Result
	if _, ok := r.LastSnapshot(); ok {
		t.Error("empty result has no last snapshot")
	}
	r.History = []types.Snapshot{{Date: dayN(0)}, {Date: dayN(1)}}
	if s, ok := r.LastSnapshot(); !ok || !s.Date.Equal(dayN(1)) {
		t.Errorf("last snapshot = %v, %v", s.Date, ok)
	}
}
