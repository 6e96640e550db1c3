package types

import (
	"time"
)

// MarketView is what a signal generator sees on one simulated day. History
// holds, per asset quoted on Date, every quote up to and including Date.
// Assets without a quote on Date are absent.
type MarketView struct {
	Date      time.Time
	History   map[AssetID][]PricePoint
	Portfolio PortfolioView
}

// Assets returns the quoted assets in ascending order.
func (m MarketView) Assets() []AssetID {
	ids := make([]AssetID, 0, len(m.History))
	for id := range m.History {
		ids = append(ids, id)
	}
	return SortAssetIDs(ids)
}
