package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfoliolab/internal/strategy"
	"portfoliolab/types"
)

var (
	DefaultBuyFraction  = decimal.RequireFromString("0.10")
	DefaultSellFraction = decimal.RequireFromString("0.50")
)

// CostModel charges commission and slippage proportionally to notional.
// MinCommission and MaxCommission clamp the per-order commission the way a
// broker fee schedule does; zero leaves that side unbounded.
type CostModel struct {
	CommissionRate decimal.Decimal `json:"commissionRate"`
	SlippageRate   decimal.Decimal `json:"slippageRate"`
	MinCommission  decimal.Decimal `json:"minCommission"`
	MaxCommission  decimal.Decimal `json:"maxCommission"`
}

// NewCostModel builds a CostModel from plain rates, e.g. 0.001 for 10bps.
func NewCostModel(commissionRate, slippageRate float64) CostModel {
	return CostModel{
		CommissionRate: decimal.NewFromFloat(commissionRate),
		SlippageRate:   decimal.NewFromFloat(slippageRate),
	}
}

func (c CostModel) commission(notional decimal.Decimal) decimal.Decimal {
	if !notional.IsPositive() {
		return decimal.Zero
	}
	fee := notional.Mul(c.CommissionRate)
	if c.MinCommission.IsPositive() && fee.LessThan(c.MinCommission) {
		fee = c.MinCommission
	}
	if c.MaxCommission.IsPositive() && fee.GreaterThan(c.MaxCommission) {
		fee = c.MaxCommission
	}
	return fee
}

func (c CostModel) slippage(notional decimal.Decimal) decimal.Decimal {
	return notional.Mul(c.SlippageRate)
}

func (c CostModel) validate() error {
	if c.CommissionRate.IsNegative() {
		return newConfigError("costModel.commissionRate", "must not be negative", nil)
	}
	if c.SlippageRate.IsNegative() {
		return newConfigError("costModel.slippageRate", "must not be negative", nil)
	}
	if c.CommissionRate.Add(c.SlippageRate).GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return newConfigError("costModel", "commission and slippage together must stay below 100%", nil)
	}
	if c.MinCommission.IsNegative() || c.MaxCommission.IsNegative() {
		return newConfigError("costModel", "commission bounds must not be negative", nil)
	}
	if c.MaxCommission.IsPositive() && c.MaxCommission.LessThan(c.MinCommission) {
		return newConfigError("costModel.maxCommission", "must not be below minCommission", nil)
	}
	return nil
}

// ExecutionPolicy sizes orders. Zero fields take the defaults: buys use 10% of
// total value, sells liquidate 50% of the position.
type ExecutionPolicy struct {
	BuyFraction      decimal.Decimal `json:"buyFraction"`
	FixedBuyNotional decimal.Decimal `json:"fixedBuyNotional"`
	SellFraction     decimal.Decimal `json:"sellFraction"`
}

func (p ExecutionPolicy) withDefaults() ExecutionPolicy {
	if p.BuyFraction.IsZero() {
		p.BuyFraction = DefaultBuyFraction
	}
	if p.SellFraction.IsZero() {
		p.SellFraction = DefaultSellFraction
	}
	return p
}

func (p ExecutionPolicy) validate() error {
	one := decimal.NewFromInt(1)
	if p.BuyFraction.IsNegative() || p.BuyFraction.GreaterThan(one) {
		return newConfigError("executionPolicy.buyFraction", "must be within (0, 1]", nil)
	}
	if p.SellFraction.IsNegative() || p.SellFraction.GreaterThan(one) {
		return newConfigError("executionPolicy.sellFraction", "must be within (0, 1]", nil)
	}
	if p.FixedBuyNotional.IsNegative() {
		return newConfigError("executionPolicy.fixedBuyNotional", "must not be negative", nil)
	}
	return nil
}

// buyNotional is the cash a single buy signal targets.
func (p ExecutionPolicy) buyNotional(totalValue decimal.Decimal) decimal.Decimal {
	if p.FixedBuyNotional.IsPositive() {
		return p.FixedBuyNotional
	}
	return totalValue.Mul(p.BuyFraction)
}

// ProgressFunc receives percentages in [0, 100], strictly increasing. It is
// called on the simulation goroutine and must return promptly.
type ProgressFunc func(percent int)

// Options tunes a single in-memory run.
type Options struct {
	Costs           CostModel
	Policy          ExecutionPolicy
	RiskFreeRate    float64
	BenchmarkAsset  types.AssetID
	Logger          *zap.Logger
	OnProgress      ProgressFunc
	StrategyOptions []strategy.Option
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// UnmarshalJSON accepts plain dates ("2024-01-31") as well as RFC 3339 timestamps.
func (d *DateRange) UnmarshalJSON(b []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var err error
	if d.Start, err = parseDate(raw.Start); err != nil {
		return fmt.Errorf("dateRange.start: %w", err)
	}
	if d.End, err = parseDate(raw.End); err != nil {
		return fmt.Errorf("dateRange.end: %w", err)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Request is the public entry point for a provider-backed backtest.
type Request struct {
	Strategy       types.StrategyConfig `json:"strategy"`
	Universe       []types.AssetID      `json:"universe,omitempty"`
	InitialCapital decimal.Decimal      `json:"initialCapital"`
	Costs          CostModel            `json:"costModel"`
	Policy         ExecutionPolicy      `json:"executionPolicy"`
	Range          DateRange            `json:"dateRange"`
	RiskFreeRate   float64              `json:"riskFreeRate"`
	Benchmark      types.AssetID        `json:"benchmarkAssetId,omitempty"`
}

// strategyConfig merges the top-level universe into the strategy.
func (r Request) strategyConfig() types.StrategyConfig {
	cfg := r.Strategy
	if len(r.Universe) > 0 {
		cfg.Universe = r.Universe
	}
	return cfg
}

func (r Request) validate() error {
	if !r.Range.Start.IsZero() && !r.Range.End.IsZero() && r.Range.End.Before(r.Range.Start) {
		return newConfigError("dateRange", "end is before start", nil)
	}
	return validateRun(r.strategyConfig(), r.InitialCapital, r.Costs, r.Policy)
}

func validateRun(cfg types.StrategyConfig, initialCapital decimal.Decimal, costs CostModel, policy ExecutionPolicy) error {
	if !strategy.Known(cfg.Type) {
		return newConfigError("strategy.type", string(cfg.Type), strategy.ErrUnknownStrategy)
	}
	if len(cfg.Universe) == 0 {
		return newConfigError("universe", "must not be empty", nil)
	}
	if !initialCapital.IsPositive() {
		return newConfigError("initialCapital", "must be positive", nil)
	}
	if _, err := types.ParseRebalanceFrequency(string(cfg.Rebalance)); err != nil {
		return newConfigError("strategy.rebalanceFrequency", string(cfg.Rebalance), err)
	}
	if err := costs.validate(); err != nil {
		return err
	}
	return policy.validate()
}
