package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"portfoliolab/types"
)

var invariantTolerance = decimal.New(1, -6)

// portfolio is owned by exactly one backtester and only mutated by the executor.
type portfolio struct {
	cash           decimal.Decimal
	holdings       map[types.AssetID]*Position
	history        []types.Snapshot
	trades         []types.Trade
	skipped        []types.SkippedTrade
	rebalanceDates []time.Time
}

type Position struct {
	Asset     types.AssetID
	Quantity  decimal.Decimal
	AvgPrice  decimal.Decimal
	LastPrice decimal.Decimal
}

func newPortfolio(initialCash decimal.Decimal) *portfolio {
	return &portfolio{
		cash:     initialCash,
		holdings: make(map[types.AssetID]*Position),
	}
}

// markToMarket updates the last price of every held asset quoted today.
// Holdings without a quote keep their previous mark.
func (p *portfolio) markToMarket(prices map[types.AssetID]decimal.Decimal) {
	for asset, pos := range p.holdings {
		if price, ok := prices[asset]; ok {
			pos.LastPrice = price
		}
	}
}

func (p *portfolio) totalValue() decimal.Decimal {
	value := p.cash
	for _, pos := range p.holdings {
		value = value.Add(pos.Quantity.Mul(pos.LastPrice))
	}
	return value
}

func (p *portfolio) copyHoldings() map[types.AssetID]types.Holding {
	out := make(map[types.AssetID]types.Holding, len(p.holdings))
	for asset, pos := range p.holdings {
		out[asset] = types.Holding{
			Asset:     asset,
			Quantity:  pos.Quantity,
			AvgPrice:  pos.AvgPrice,
			LastPrice: pos.LastPrice,
		}
	}
	return out
}

func (p *portfolio) GetPortfolioSnapshot(curTime time.Time) types.PortfolioView {
	return types.PortfolioView{
		Cash:       p.cash,
		TotalValue: p.totalValue(),
		Holdings:   p.copyHoldings(),
		Time:       curTime,
	}
}

// snapshot appends the valuation for date and checks the accounting invariant.
func (p *portfolio) snapshot(date time.Time) (types.Snapshot, error) {
	snap := types.Snapshot{
		Date:       date,
		TotalValue: p.totalValue(),
		Cash:       p.cash,
		Holdings:   p.copyHoldings(),
	}
	if err := verifyInvariant(snap); err != nil {
		return snap, err
	}
	p.history = append(p.history, snap)
	return snap, nil
}

func verifyInvariant(s types.Snapshot) error {
	if s.Cash.IsNegative() {
		return fmt.Errorf("%w: cash %s on %s", ErrInvariantViolated, s.Cash, s.Date.Format(time.DateOnly))
	}
	sum := s.Cash
	for _, h := range s.Holdings {
		if h.Quantity.IsNegative() {
			return fmt.Errorf("%w: negative quantity of %s on %s", ErrInvariantViolated, h.Asset, s.Date.Format(time.DateOnly))
		}
		sum = sum.Add(h.MarketValue())
	}
	diff := sum.Sub(s.TotalValue).Abs()
	limit := s.TotalValue.Abs().Mul(invariantTolerance)
	if diff.GreaterThan(limit) {
		return fmt.Errorf("%w: total %s != cash+holdings %s on %s", ErrInvariantViolated, s.TotalValue, sum, s.Date.Format(time.DateOnly))
	}
	return nil
}

// buy adds quantity at price and debits cost, which includes fees.
func (p *portfolio) buy(asset types.AssetID, quantity, price, cost decimal.Decimal) {
	pos := p.holdings[asset]
	if pos == nil {
		pos = &Position{Asset: asset}
		p.holdings[asset] = pos
	}
	pos.AvgPrice = weightedAvg(pos.AvgPrice, pos.Quantity, price, quantity)
	pos.Quantity = pos.Quantity.Add(quantity)
	pos.LastPrice = price
	p.cash = p.cash.Sub(cost)
}

// sell removes quantity and credits the net proceeds. A position reduced to
// zero is dropped.
func (p *portfolio) sell(asset types.AssetID, quantity, price, proceeds decimal.Decimal) {
	pos := p.holdings[asset]
	pos.Quantity = pos.Quantity.Sub(quantity)
	pos.LastPrice = price
	p.cash = p.cash.Add(proceeds)
	if pos.Quantity.IsZero() {
		delete(p.holdings, asset)
	}
}

func weightedAvg(existingAvgPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvgPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}
