package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfoliolab/internal/strategy"
	"portfoliolab/types"
)

// Engine runs backtests against an external price provider.
type Engine struct {
	provider PriceProvider
	log      *zap.Logger
}

func NewEngine(provider PriceProvider, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{provider: provider, log: log}
}

// Run loads prices for the request and simulates it. onProgress may be nil.
func (e *Engine) Run(ctx context.Context, req Request, onProgress ProgressFunc) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	cfg := req.strategyConfig()

	priceData, err := e.loadData(ctx, cfg.Universe, req.Benchmark, req.Range)
	if err != nil {
		return nil, err
	}

	return RunBacktest(ctx, cfg, priceData, req.InitialCapital, Options{
		Costs:          req.Costs,
		Policy:         req.Policy,
		RiskFreeRate:   req.RiskFreeRate,
		BenchmarkAsset: req.Benchmark,
		Logger:         e.log,
		OnProgress:     onProgress,
	})
}

func (e *Engine) loadData(ctx context.Context, universe []types.AssetID, benchmark types.AssetID, dates DateRange) (map[types.AssetID]types.PriceSeries, error) {
	assets := append([]types.AssetID(nil), universe...)
	if benchmark != "" {
		assets = append(assets, benchmark)
	}

	out := make(map[types.AssetID]types.PriceSeries, len(assets))
	for _, asset := range assets {
		if _, done := out[asset]; done {
			continue
		}
		series, err := e.provider.GetHistoricalPrices(ctx, asset, dates.Start, dates.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPriceData, asset, err)
		}
		series.Asset = asset
		out[asset] = clipSeries(series, dates)
		e.log.Debug("loaded prices", zap.String("asset", string(asset)), zap.Int("points", len(series.Points)))
	}
	return out, nil
}

// clipSeries drops anything a provider returned outside the requested range.
func clipSeries(s types.PriceSeries, dates DateRange) types.PriceSeries {
	points := make([]types.PricePoint, 0, len(s.Points))
	for _, p := range s.Points {
		d := types.Day(p.Date)
		if !dates.Start.IsZero() && d.Before(types.Day(dates.Start)) {
			continue
		}
		if !dates.End.IsZero() && d.After(types.Day(dates.End)) {
			continue
		}
		points = append(points, p)
	}
	s.Points = points
	return s
}

// RunBacktest simulates cfg over in-memory price data. Configuration problems
// are reported as *ConfigurationError before any state is created. When ctx is
// cancelled the partial result, flagged Cancelled, is returned with the error.
func RunBacktest(ctx context.Context, cfg types.StrategyConfig, priceData map[types.AssetID]types.PriceSeries, initialCapital decimal.Decimal, opts Options) (*Result, error) {
	if err := validateRun(cfg, initialCapital, opts.Costs, opts.Policy); err != nil {
		return nil, err
	}
	if err := validateSeries(cfg.Universe, priceData); err != nil {
		return nil, err
	}
	frequency, _ := types.ParseRebalanceFrequency(string(cfg.Rebalance))
	gen, err := strategy.New(cfg, opts.StrategyOptions...)
	if err != nil {
		return nil, newConfigError("strategy", string(cfg.Type), err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	universe := types.SortAssetIDs(cfg.Universe)
	bt := newBacktester(
		universe,
		priceData,
		frequency,
		gen,
		newExecutor(opts.Costs, opts.Policy, log),
		newPortfolio(initialCapital),
		log,
		opts.OnProgress,
	)
	if len(bt.days) == 0 {
		return nil, newConfigError("priceData", "no quotes for any universe asset", nil)
	}

	started := time.Now()
	runErr := bt.run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return nil, runErr
	}

	var benchmark []types.PricePoint
	if opts.BenchmarkAsset != "" {
		benchmark = priceData[opts.BenchmarkAsset].Points
	}
	result := generateResult(cfg, bt.portfolio, benchmark, opts.RiskFreeRate)
	result.Cancelled = runErr != nil

	log.Info("backtest finished",
		zap.String("run_id", result.RunID.String()),
		zap.String("strategy", string(cfg.Type)),
		zap.Int("days", len(result.History)),
		zap.Int("trades", len(result.Trades)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("elapsed", time.Since(started)),
	)
	if runErr != nil {
		return result, fmt.Errorf("backtest interrupted after %d days: %w", len(result.History), runErr)
	}
	return result, nil
}
