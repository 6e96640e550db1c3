package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	Asset     AssetID         `json:"asset"`
	Quantity  decimal.Decimal `json:"quantity"`
	AvgPrice  decimal.Decimal `json:"avgPrice"`
	LastPrice decimal.Decimal `json:"lastPrice"`
}

// MarketValue is quantity times the last marked price.
func (h Holding) MarketValue() decimal.Decimal {
	return h.Quantity.Mul(h.LastPrice)
}

// Snapshot is the end-of-day valuation appended once per trading day.
type Snapshot struct {
	Date       time.Time           `json:"date"`
	TotalValue decimal.Decimal     `json:"totalValue"`
	Cash       decimal.Decimal     `json:"cash"`
	Holdings   map[AssetID]Holding `json:"holdings"`
}

// PortfolioView is a read-only copy of the portfolio handed to signal generators.
type PortfolioView struct {
	Cash       decimal.Decimal
	TotalValue decimal.Decimal
	Holdings   map[AssetID]Holding
	Time       time.Time
}

// Quantity returns the held quantity of asset, zero if not held.
func (v PortfolioView) Quantity(asset AssetID) decimal.Decimal {
	return v.Holdings[asset].Quantity
}
