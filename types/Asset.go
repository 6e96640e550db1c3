package types

import (
	"slices"
	"time"
)

// AssetID identifies a tradable instrument, usually its ticker.
type AssetID string

type AssetType string

const (
	AssetTypeStock  AssetType = "STOCK"
	AssetTypeCrypto AssetType = "CRYPTO"
	AssetTypeEtf    AssetType = "ETF"
)

type Asset struct {
	Id         int       `json:"id"`
	Ticker     AssetID   `json:"ticker"`
	Name       string    `json:"name"`
	Type       AssetType `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// SortAssetIDs returns a sorted copy of ids.
func SortAssetIDs(ids []AssetID) []AssetID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}
