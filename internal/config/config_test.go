package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliolab/types"
)

const sampleConfig = `
log:
  level: debug
provider:
  kind: sqlite
  dsn: prices.db
server:
  addr: ":9090"
backtest:
  strategy:
    type: smartBeta
    universe: [AAPL, MSFT]
    threshold: 0.1
    rebalance: Monthly
    factor_weights: {value: 0.5, quality: 0.5}
    factor_scores:
      AAPL: {value: 0.2, quality: 0.1}
  initial_capital: "100000"
  commission_rate: "0.001"
  slippage_rate: "0.0005"
  min_commission: "1.70"
  sell_fraction: "0.25"
  start: 2022-01-01
  end: "2023-01-01"
  risk_free_rate: 0.02
  benchmark: SPY
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, ProviderSQLite, f.Provider.Kind)
	assert.Equal(t, "prices.db", f.Provider.DSN)
	assert.Equal(t, ":9090", f.Server.Addr)

	req, err := f.Backtest.Request()
	require.NoError(t, err)
	assert.Equal(t, types.StrategySmartBeta, req.Strategy.Type)
	assert.Equal(t, []types.AssetID{"AAPL", "MSFT"}, req.Strategy.Universe)
	assert.Equal(t, types.RebalanceMonthly, req.Strategy.Rebalance)
	assert.Equal(t, 0.5, req.Strategy.FactorWeights["value"])
	assert.Equal(t, 0.2, req.Strategy.FactorScores["AAPL"]["value"])
	assert.True(t, req.InitialCapital.Equal(decimal.NewFromInt(100000)))
	assert.True(t, req.Costs.CommissionRate.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, req.Costs.MinCommission.Equal(decimal.RequireFromString("1.7")))
	assert.True(t, req.Policy.SellFraction.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, req.Policy.BuyFraction.IsZero(), "unset fraction is left to the engine default")
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), req.Range.Start)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), req.Range.End)
	assert.Equal(t, 0.02, req.RiskFreeRate)
	assert.Equal(t, types.AssetID("SPY"), req.Benchmark)
}

func TestParseDefaults(t *testing.T) {
	f, err := Parse([]byte("backtest:\n  strategy:\n    type: buyAndHold\n"))
	require.NoError(t, err)
	assert.Equal(t, "info", f.Log.Level)
	assert.Equal(t, ProviderPostgres, f.Provider.Kind)
	assert.Equal(t, ":8080", f.Server.Addr)

	req, err := f.Backtest.Request()
	require.NoError(t, err)
	assert.Equal(t, types.RebalanceDaily, req.Strategy.Rebalance)
	assert.True(t, req.Range.Start.IsZero())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("provider:\n  kind: redis\n"))
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = Parse([]byte("log: [unterminated"))
	assert.Error(t, err)

	tests := []struct {
		name string
		yaml string
	}{
		{"bad decimal", "backtest:\n  initial_capital: lots\n"},
		{"bad date", "backtest:\n  start: 01/02/2022\n"},
		{"bad rebalance", "backtest:\n  strategy:\n    rebalance: hourly\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = f.Backtest.Request()
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtester.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderSQLite, f.Provider.Kind)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	f := Default()
	log, err := f.Logger()
	require.NoError(t, err)
	assert.NotNil(t, log)

	f.Log.Level = "chatty"
	_, err = f.Logger()
	assert.Error(t, err)
}
