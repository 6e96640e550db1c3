package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfoliolab/types"
)

// executor turns signals into fills against a single portfolio.
type executor struct {
	costs  CostModel
	policy ExecutionPolicy
	log    *zap.Logger
}

func newExecutor(costs CostModel, policy ExecutionPolicy, log *zap.Logger) *executor {
	return &executor{costs: costs, policy: policy.withDefaults(), log: log}
}

// Execute processes signals in ascending asset order, sells before buys, so
// cash-constrained outcomes do not depend on generator order. Buy sizing uses
// the total value at the start of the call. Returned trades are also appended
// to the portfolio; skipped signals are recorded on it.
func (e *executor) Execute(p *portfolio, signals []types.Signal, prices map[types.AssetID]decimal.Decimal, date time.Time) []types.Trade {
	if len(signals) == 0 {
		return nil
	}
	ordered := append([]types.Signal(nil), signals...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Asset != ordered[j].Asset {
			return ordered[i].Asset < ordered[j].Asset
		}
		return sideRank(ordered[i].Side) < sideRank(ordered[j].Side)
	})

	startValue := p.totalValue()
	var trades []types.Trade
	for _, sig := range ordered {
		price, ok := prices[sig.Asset]
		if !ok {
			e.skip(p, sig, date, types.SkipNoQuote, decimal.Zero)
			continue
		}

		var (
			tr     types.Trade
			filled bool
		)
		switch sig.Side {
		case types.SideTypeBuy:
			tr, filled = e.buy(p, sig, price, startValue, date)
		case types.SideTypeSell:
			tr, filled = e.sell(p, sig, price, date)
		default:
			e.log.Warn("ignoring signal with unknown side",
				zap.Time("date", date), zap.String("asset", string(sig.Asset)), zap.String("side", string(sig.Side)))
			continue
		}
		if !filled {
			continue
		}
		p.trades = append(p.trades, tr)
		trades = append(trades, tr)
	}
	return trades
}

func (e *executor) buy(p *portfolio, sig types.Signal, price, totalValue decimal.Decimal, date time.Time) (types.Trade, bool) {
	notional := e.policy.buyNotional(totalValue)
	required := notional.Add(e.costs.commission(notional)).Add(e.costs.slippage(notional))
	if p.cash.LessThan(required) {
		e.skip(p, sig, date, types.SkipInsufficientFunds, required)
		return types.Trade{}, false
	}

	qty := getQuantityForPrice(price, notional)
	if qty.IsZero() {
		e.skip(p, sig, date, types.SkipZeroQuantity, required)
		return types.Trade{}, false
	}

	gross := qty.Mul(price)
	commission := e.costs.commission(gross)
	slippage := e.costs.slippage(gross)
	cost := gross.Add(commission).Add(slippage)
	p.buy(sig.Asset, qty, price, cost)

	return types.Trade{
		Date:           date,
		Asset:          sig.Asset,
		Side:           types.SideTypeBuy,
		Price:          price,
		Quantity:       qty,
		Commission:     commission,
		Slippage:       slippage,
		CashDelta:      cost.Neg(),
		RealizedPnL:    decimal.Zero,
		SignalStrength: sig.Strength,
		Reason:         sig.Reason,
	}, true
}

func (e *executor) sell(p *portfolio, sig types.Signal, price decimal.Decimal, date time.Time) (types.Trade, bool) {
	pos := p.holdings[sig.Asset]
	if pos == nil || !pos.Quantity.IsPositive() {
		e.skip(p, sig, date, types.SkipInsufficientHoldings, decimal.Zero)
		return types.Trade{}, false
	}

	qty := pos.Quantity.Mul(e.policy.SellFraction).Floor()
	if qty.IsZero() {
		// a position too small to split is closed outright
		qty = pos.Quantity
	}

	gross := qty.Mul(price)
	commission := e.costs.commission(gross)
	slippage := e.costs.slippage(gross)
	proceeds := gross.Sub(commission).Sub(slippage)
	if proceeds.IsNegative() {
		// a minimum fee never turns a sale into a debit
		commission = gross.Sub(slippage)
		proceeds = decimal.Zero
	}
	realized := proceeds.Sub(qty.Mul(pos.AvgPrice))
	p.sell(sig.Asset, qty, price, proceeds)

	return types.Trade{
		Date:           date,
		Asset:          sig.Asset,
		Side:           types.SideTypeSell,
		Price:          price,
		Quantity:       qty,
		Commission:     commission,
		Slippage:       slippage,
		CashDelta:      proceeds,
		RealizedPnL:    realized,
		SignalStrength: sig.Strength,
		Reason:         sig.Reason,
	}, true
}

func (e *executor) skip(p *portfolio, sig types.Signal, date time.Time, reason types.SkipReason, required decimal.Decimal) {
	p.skipped = append(p.skipped, types.SkippedTrade{
		Date:           date,
		Asset:          sig.Asset,
		Side:           sig.Side,
		Reason:         reason,
		SignalStrength: sig.Strength,
		RequiredCash:   required,
		AvailableCash:  p.cash,
	})
	e.log.Info("signal not executed",
		zap.Time("date", date),
		zap.String("asset", string(sig.Asset)),
		zap.String("action", string(sig.Side)),
		zap.String("reason", string(reason)),
		zap.String("required_cash", required.String()),
		zap.String("available_cash", p.cash.String()),
	)
}

func sideRank(s types.Side) int {
	if s == types.SideTypeSell {
		return 0
	}
	return 1
}

func getQuantityForPrice(price, capitalToUse decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return capitalToUse.Div(price).Floor()
}
