package strategy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"portfoliolab/types"
)

var (
	ErrUnknownStrategy  = errors.New("unknown strategy type")
	ErrInvalidLookback  = errors.New("lookback must be positive")
	ErrInvalidThreshold = errors.New("threshold must not be negative")
	ErrNoFactorWeights  = errors.New("smart beta needs at least one factor weight")
)

// Generator produces the signals of one strategy for one simulated day.
// Implementations may keep per-run state, so a Generator must not be shared
// between backtests.
type Generator interface {
	Type() types.StrategyType
	GenerateSignals(view types.MarketView) []types.Signal
}

// FactorSource supplies externally computed factor scores for smart beta.
type FactorSource interface {
	Scores(asset types.AssetID, date time.Time) (map[string]float64, bool)
}

// Combiner folds factor scores into a single signal strength.
type Combiner func(weights, scores map[string]float64) float64

type options struct {
	factors  FactorSource
	combiner Combiner
}

type Option func(*options)

// WithFactorSource replaces the static scores carried in the config.
func WithFactorSource(src FactorSource) Option {
	return func(o *options) { o.factors = src }
}

// WithCombiner replaces the default weighted sum.
func WithCombiner(c Combiner) Option {
	return func(o *options) { o.combiner = c }
}

// Constructor validates cfg and builds a generator for one run.
type Constructor func(cfg types.StrategyConfig, o Settings) (Generator, error)

// Settings carries the plug-ins resolved from Options.
type Settings struct {
	Factors  FactorSource
	Combiner Combiner
}

var registry = make(map[types.StrategyType]Constructor)

// Register makes a strategy type available to New. It panics on duplicates and
// is meant to be called from init.
func Register(t types.StrategyType, c Constructor) {
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("strategy %q registered twice", t))
	}
	registry[t] = c
}

// New builds a fresh generator for cfg.Type.
func New(cfg types.StrategyConfig, opts ...Option) (Generator, error) {
	c, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("%q: %w", cfg.Type, ErrUnknownStrategy)
	}
	if cfg.Parameters.Threshold < 0 {
		return nil, ErrInvalidThreshold
	}
	o := options{combiner: WeightedSum}
	for _, opt := range opts {
		opt(&o)
	}
	return c(cfg, Settings{Factors: o.factors, Combiner: o.combiner})
}

// Known reports whether t names a registered strategy.
func Known(t types.StrategyType) bool {
	_, ok := registry[t]
	return ok
}

// Types lists the registered strategies in name order.
func Types() []types.StrategyType {
	out := make([]types.StrategyType, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func requireLookback(cfg types.StrategyConfig) error {
	if cfg.Parameters.Lookback <= 0 {
		return fmt.Errorf("%s: %w", cfg.Type, ErrInvalidLookback)
	}
	return nil
}

// StaticFactors serves the same scores on every date.
type StaticFactors types.FactorScores

func (s StaticFactors) Scores(asset types.AssetID, _ time.Time) (map[string]float64, bool) {
	sc, ok := s[asset]
	return sc, ok
}

// WeightedSum multiplies each score by its weight. Factors are visited in name
// order so the float sum is reproducible; missing scores count as zero.
func WeightedSum(weights, scores map[string]float64) float64 {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var total float64
	for _, name := range names {
		total += weights[name] * scores[name]
	}
	return total
}
