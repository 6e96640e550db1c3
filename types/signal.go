package types

import (
	"time"
)

// Signal is a buy or sell intent for one asset on one simulated day.
type Signal struct {
	Asset    AssetID
	Side     Side
	Strength float64
	Reason   string
	Date     time.Time
}

func NewSignal(
	asset AssetID,
	side Side,
	strength float64,
	reason string,
	date time.Time,
) Signal {
	return Signal{
		Asset:    asset,
		Side:     side,
		Strength: strength,
		Reason:   reason,
		Date:     date,
	}
}
