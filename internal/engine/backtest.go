package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfoliolab/types"
)

// backtester replays one strategy over the trading days of its universe.
// Days are processed strictly in order; a day's snapshot is committed before
// the next day starts.
type backtester struct {
	universe   []types.AssetID
	series     map[types.AssetID]types.PriceSeries
	days       []time.Time
	generator  signalGenerator
	executor   *executor
	rebalancer *rebalancer
	portfolio  *portfolio
	log        *zap.Logger
	onProgress ProgressFunc

	feedIndex    map[types.AssetID]int
	lastProgress int
}

func newBacktester(
	universe []types.AssetID,
	series map[types.AssetID]types.PriceSeries,
	frequency types.RebalanceFrequency,
	generator signalGenerator,
	exec *executor,
	portfolio *portfolio,
	log *zap.Logger,
	onProgress ProgressFunc,
) *backtester {
	feedIndex := make(map[types.AssetID]int, len(universe))
	for _, asset := range universe {
		feedIndex[asset] = -1
	}
	return &backtester{
		universe:     universe,
		series:       series,
		days:         tradingDays(universe, series),
		generator:    generator,
		executor:     exec,
		rebalancer:   newRebalancer(frequency),
		portfolio:    portfolio,
		log:          log,
		onProgress:   onProgress,
		feedIndex:    feedIndex,
		lastProgress: -1,
	}
}

// run returns ctx.Err() when cancelled between days. The portfolio then holds
// the last fully committed day.
func (b *backtester) run(ctx context.Context) error {
	b.progress(0)
	for i, day := range b.days {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.step(day); err != nil {
			return err
		}
		b.progress((i + 1) * 100 / len(b.days))
	}
	b.progress(100)
	return nil
}

func (b *backtester) step(day time.Time) error {
	prices := make(map[types.AssetID]decimal.Decimal, len(b.universe))
	history := make(map[types.AssetID][]types.PricePoint, len(b.universe))
	for _, asset := range b.universe {
		points := b.series[asset].Points
		idx := advanceFeedIndex(points, b.feedIndex[asset], day)
		b.feedIndex[asset] = idx
		if idx < 0 || !types.Day(points[idx].Date).Equal(day) {
			continue
		}
		prices[asset] = points[idx].Price
		// capped so a generator cannot append into the shared backing array
		history[asset] = points[: idx+1 : idx+1]
	}

	b.portfolio.markToMarket(prices)
	if _, err := b.portfolio.snapshot(day); err != nil {
		return err
	}

	if !b.rebalancer.due(day) {
		return nil
	}
	b.portfolio.rebalanceDates = append(b.portfolio.rebalanceDates, day)
	for _, asset := range b.universe {
		if _, ok := prices[asset]; !ok {
			b.log.Debug("no quote, asset skipped for the day",
				zap.Time("date", day), zap.String("asset", string(asset)), zap.String("reason", "data_gap"))
		}
	}

	view := types.MarketView{
		Date:      day,
		History:   history,
		Portfolio: b.portfolio.GetPortfolioSnapshot(day),
	}
	signals := b.generator.GenerateSignals(view)
	trades := b.executor.Execute(b.portfolio, signals, prices, day)
	if len(signals) > 0 {
		b.log.Debug("rebalanced",
			zap.Time("date", day), zap.Int("signals", len(signals)), zap.Int("trades", len(trades)))
	}
	return nil
}

func (b *backtester) progress(pct int) {
	if b.onProgress == nil || pct <= b.lastProgress {
		return
	}
	b.lastProgress = pct
	b.onProgress(pct)
}

// tradingDays is the ascending union of dates on which any universe asset is quoted.
func tradingDays(universe []types.AssetID, series map[types.AssetID]types.PriceSeries) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, asset := range universe {
		for _, p := range series[asset].Points {
			seen[types.Day(p.Date)] = struct{}{}
		}
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// advanceFeedIndex moves forward to the last point dated on or before day.
// Index only goes one way.
func advanceFeedIndex(points []types.PricePoint, prevIndex int, day time.Time) int {
	if prevIndex < -1 {
		prevIndex = -1
	}
	for next := prevIndex + 1; next < len(points); next++ {
		if types.Day(points[next].Date).After(day) {
			break
		}
		prevIndex = next
	}
	return prevIndex
}

func validateSeries(universe []types.AssetID, series map[types.AssetID]types.PriceSeries) error {
	for _, asset := range universe {
		s, ok := series[asset]
		if !ok {
			continue
		}
		if err := s.Validate(); err != nil {
			return newConfigError(fmt.Sprintf("priceData[%s]", asset), "invalid series", err)
		}
	}
	return nil
}
