package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"portfoliolab/types"
)

// GetAssetByTicker retrieves a types.Asset by its ticker.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error) {
	asset, err := db.assets.GetAssetByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	return &types.Asset{
		Id:         int(asset.ID),
		Ticker:     types.AssetID(asset.Ticker),
		Name:       asset.Name,
		Type:       types.AssetType(asset.Type),
		CreatedAt:  deref(asset.CreatedAt),
		ModifiedAt: deref(asset.ModifiedAt),
	}, nil
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
