package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfoliolab/types"
)

// Memory serves price series held in process. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	series map[types.AssetID]types.PriceSeries
}

func NewMemory(series ...types.PriceSeries) *Memory {
	m := &Memory{series: make(map[types.AssetID]types.PriceSeries, len(series))}
	for _, s := range series {
		m.Add(s)
	}
	return m
}

// Add stores or replaces the series for s.Asset.
func (m *Memory) Add(s types.PriceSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[s.Asset] = s
}

func (m *Memory) GetHistoricalPrices(_ context.Context, asset types.AssetID, start, end time.Time) (types.PriceSeries, error) {
	start, end, err := boundedRange(start, end)
	if err != nil {
		return types.PriceSeries{}, err
	}
	m.mu.RLock()
	s, ok := m.series[asset]
	m.mu.RUnlock()
	if !ok {
		return types.PriceSeries{}, fmt.Errorf("ticker %s %w", asset, ErrAssetNotFound)
	}

	from, to := types.Day(start), types.Day(end)
	points := make([]types.PricePoint, 0, len(s.Points))
	for _, p := range s.Points {
		d := types.Day(p.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		points = append(points, p)
	}
	return types.PriceSeries{Asset: asset, Points: points}, nil
}
