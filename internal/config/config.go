package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"portfoliolab/internal/engine"
	"portfoliolab/types"
)

const (
	ProviderPostgres = "postgres"
	ProviderSQLite   = "sqlite"
)

var ErrUnknownProvider = errors.New("unknown price provider")

type File struct {
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Provider struct {
		Kind string `yaml:"kind"`
		DSN  string `yaml:"dsn"`
	} `yaml:"provider"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Backtest Backtest `yaml:"backtest"`
}

type Backtest struct {
	Strategy struct {
		Type          string                        `yaml:"type"`
		Universe      []string                      `yaml:"universe"`
		Lookback      int                           `yaml:"lookback"`
		Threshold     float64                       `yaml:"threshold"`
		Rebalance     string                        `yaml:"rebalance"`
		FactorWeights map[string]float64            `yaml:"factor_weights"`
		FactorScores  map[string]map[string]float64 `yaml:"factor_scores"`
	} `yaml:"strategy"`

	InitialCapital   string  `yaml:"initial_capital"`
	CommissionRate   string  `yaml:"commission_rate"`
	SlippageRate     string  `yaml:"slippage_rate"`
	MinCommission    string  `yaml:"min_commission"`
	MaxCommission    string  `yaml:"max_commission"`
	BuyFraction      string  `yaml:"buy_fraction"`
	SellFraction     string  `yaml:"sell_fraction"`
	FixedBuyNotional string  `yaml:"fixed_buy_notional"`
	Start            string  `yaml:"start"`
	End              string  `yaml:"end"`
	RiskFreeRate     float64 `yaml:"risk_free_rate"`
	Benchmark        string  `yaml:"benchmark"`
}

// Default returns the settings used for anything a file leaves out.
func Default() File {
	var f File
	f.Log.Level = "info"
	f.Provider.Kind = ProviderPostgres
	f.Server.Addr = ":8080"
	f.Backtest.Strategy.Rebalance = string(types.RebalanceDaily)
	return f
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	f := Default()
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	switch f.Provider.Kind {
	case ProviderPostgres, ProviderSQLite:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, f.Provider.Kind)
	}
	return &f, nil
}

// Logger builds a zap logger at the configured level.
func (f *File) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(f.Log.Level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if f.Log.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	return cfg.Build()
}

// Request converts the backtest section into an engine request. Validation of
// the values themselves is left to the engine.
func (b Backtest) Request() (engine.Request, error) {
	var req engine.Request
	var err error

	freq, err := types.ParseRebalanceFrequency(b.Strategy.Rebalance)
	if err != nil {
		return req, err
	}
	req.Strategy = types.StrategyConfig{
		Type:          types.StrategyType(b.Strategy.Type),
		Parameters:    types.StrategyParameters{Lookback: b.Strategy.Lookback, Threshold: b.Strategy.Threshold},
		Rebalance:     freq,
		FactorWeights: b.Strategy.FactorWeights,
	}
	for _, id := range b.Strategy.Universe {
		req.Strategy.Universe = append(req.Strategy.Universe, types.AssetID(id))
	}
	if len(b.Strategy.FactorScores) > 0 {
		req.Strategy.FactorScores = make(types.FactorScores, len(b.Strategy.FactorScores))
		for id, scores := range b.Strategy.FactorScores {
			req.Strategy.FactorScores[types.AssetID(id)] = scores
		}
	}

	fields := []struct {
		name string
		in   string
		out  *decimal.Decimal
	}{
		{"initial_capital", b.InitialCapital, &req.InitialCapital},
		{"commission_rate", b.CommissionRate, &req.Costs.CommissionRate},
		{"slippage_rate", b.SlippageRate, &req.Costs.SlippageRate},
		{"min_commission", b.MinCommission, &req.Costs.MinCommission},
		{"max_commission", b.MaxCommission, &req.Costs.MaxCommission},
		{"buy_fraction", b.BuyFraction, &req.Policy.BuyFraction},
		{"sell_fraction", b.SellFraction, &req.Policy.SellFraction},
		{"fixed_buy_notional", b.FixedBuyNotional, &req.Policy.FixedBuyNotional},
	}
	for _, f := range fields {
		if f.in == "" {
			continue
		}
		if *f.out, err = decimal.NewFromString(f.in); err != nil {
			return req, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	if req.Range.Start, err = parseDate(b.Start); err != nil {
		return req, fmt.Errorf("start: %w", err)
	}
	if req.Range.End, err = parseDate(b.End); err != nil {
		return req, fmt.Errorf("end: %w", err)
	}
	req.RiskFreeRate = b.RiskFreeRate
	req.Benchmark = types.AssetID(b.Benchmark)
	return req, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
