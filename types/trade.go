package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an executed fill. It is never mutated after it is recorded.
type Trade struct {
	Date           time.Time       `json:"date"`
	Asset          AssetID         `json:"asset"`
	Side           Side            `json:"action"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	Commission     decimal.Decimal `json:"commission"`
	Slippage       decimal.Decimal `json:"slippage"`
	CashDelta      decimal.Decimal `json:"cashDelta"`
	RealizedPnL    decimal.Decimal `json:"realizedPnl"`
	SignalStrength float64         `json:"signalStrength"`
	Reason         string          `json:"reason"`
}

// Closed reports whether the trade realised profit or loss.
func (t Trade) Closed() bool {
	return t.Side == SideTypeSell
}

// SkippedTrade records a signal that could not be executed.
type SkippedTrade struct {
	Date           time.Time       `json:"date"`
	Asset          AssetID         `json:"asset"`
	Side           Side            `json:"action"`
	Reason         SkipReason      `json:"reason"`
	SignalStrength float64         `json:"signalStrength"`
	RequiredCash   decimal.Decimal `json:"requiredCash"`
	AvailableCash  decimal.Decimal `json:"availableCash"`
}
