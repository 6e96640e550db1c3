package types

type Side string

type SkipReason string

const (
	SideTypeBuy  Side = "buy"
	SideTypeSell Side = "sell"

	SkipInsufficientFunds    SkipReason = "insufficient_funds"
	SkipInsufficientHoldings SkipReason = "insufficient_holdings"
	SkipNoQuote              SkipReason = "no_quote"
	SkipZeroQuantity         SkipReason = "zero_quantity"
)
