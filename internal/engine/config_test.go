package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"portfoliolab/types"
)

func TestRequestJSON(t *testing.T) {
	body := `{
		"strategy": {"type": "momentum", "parameters": {"lookback": 20, "threshold": 0.05}, "rebalanceFrequency": "weekly"},
		"universe": ["AAPL", "MSFT"],
		"initialCapital": "100000",
		"costModel": {"commissionRate": "0.001", "slippageRate": 0.0005},
		"dateRange": {"start": "2022-01-03", "end": "2022-12-30T00:00:00Z"},
		"riskFreeRate": 0.02,
		"benchmarkAssetId": "SPY"
	}`
	var req Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := req.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cfg := req.strategyConfig()
	if len(cfg.Universe) != 2 || cfg.Parameters.Lookback != 20 || cfg.Rebalance != types.RebalanceWeekly {
		t.Errorf("strategy config = %+v", cfg)
	}
	if !req.Range.Start.Equal(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s", req.Range.Start)
	}
	if !req.Range.End.Equal(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %s", req.Range.End)
	}
	if !req.Costs.SlippageRate.Equal(dec("0.0005")) || req.Benchmark != "SPY" {
		t.Errorf("costs = %+v, benchmark = %s", req.Costs, req.Benchmark)
	}

	if err := json.Unmarshal([]byte(`{"dateRange": {"start": "03/01/2022"}}`), &req); err == nil {
		t.Error("expected an error for an unparseable date")
	}
}

func TestCostModelValidate(t *testing.T) {
	tests := []struct {
		name    string
		costs   CostModel
		wantErr bool
	}{
		{"zero", CostModel{}, false},
		{"typical", NewCostModel(0.001, 0.0005), false},
		{"negative slippage", NewCostModel(0, -0.1), true},
		{"costs eat the whole trade", NewCostModel(0.6, 0.4), true},
		{"negative minimum", CostModel{MinCommission: dec("-1")}, true},
		{"max below min", CostModel{MinCommission: dec("5"), MaxCommission: dec("2")}, true},
		{"bounded", CostModel{CommissionRate: dec("0.0005"), MinCommission: dec("1.70"), MaxCommission: dec("39")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.costs.validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfiguration) {
				t.Errorf("error %v is not a configuration error", err)
			}
		})
	}
}

func TestCostModelCommissionBounds(t *testing.T) {
	c := CostModel{CommissionRate: dec("0.0005"), MinCommission: dec("1.70"), MaxCommission: dec("39")}
	tests := []struct {
		notional string
		want     string
	}{
		{"0", "0"},
		{"1000", "1.70"},
		{"10000", "5"},
		{"1000000", "39"},
	}
	for _, tt := range tests {
		if got := c.commission(dec(tt.notional)); !got.Equal(dec(tt.want)) {
			t.Errorf("commission(%s) = %s, want %s", tt.notional, got, tt.want)
		}
	}
}

func TestExecutionPolicy(t *testing.T) {
	p := ExecutionPolicy{}.withDefaults()
	if !p.BuyFraction.Equal(DefaultBuyFraction) || !p.SellFraction.Equal(DefaultSellFraction) {
		t.Errorf("defaults = %+v", p)
	}
	if got := p.buyNotional(dec("5000")); !got.Equal(dec("500")) {
		t.Errorf("buyNotional = %s, want 500", got)
	}
	p.FixedBuyNotional = dec("750")
	if got := p.buyNotional(dec("5000")); !got.Equal(dec("750")) {
		t.Errorf("fixed buyNotional = %s, want 750", got)
	}

	if err := (ExecutionPolicy{SellFraction: dec("1.5")}).validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("sell fraction above 1: err = %v", err)
	}
	if err := (ExecutionPolicy{FixedBuyNotional: dec("-1")}).validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("negative notional: err = %v", err)
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := newConfigError("universe", "must not be empty", nil)
	if err.Error() != "configuration: universe: must not be empty" {
		t.Errorf("Error() = %q", err.Error())
	}
	wrapped := newConfigError("strategy", "momentum", errors.New("boom"))
	if !errors.Is(wrapped, ErrConfiguration) || errors.Unwrap(wrapped).Error() != "boom" {
		t.Errorf("wrapped = %v", wrapped)
	}
}
