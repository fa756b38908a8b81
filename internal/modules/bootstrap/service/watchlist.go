package service

import (
	"context"
	"fmt"

	"daily_trader/internal/models"
)

type PositionSource interface {
	OpenPositions(ctx context.Context, sess models.Session) ([]models.ObservedPosition, error)
}

type Watchlist struct{ broker PositionSource }

func NewWatchlist(broker PositionSource) *Watchlist {
	return &Watchlist{broker: broker}
}

// Epics уникальные epics открытых позиций в порядке снапшота.
func (w *Watchlist) Epics(ctx context.Context, sess models.Session) ([]string, int, error) {
	positions, err := w.broker.OpenPositions(ctx, sess)
	if err != nil {
		return nil, 0, fmt.Errorf("watchlist: %w", err)
	}
	seen := make(map[string]struct{}, len(positions))
	var epics []string
	for _, p := range positions {
		if p.Epic == "" {
			continue
		}
		if _, ok := seen[p.Epic]; ok {
			continue
		}
		seen[p.Epic] = struct{}{}
		epics = append(epics, p.Epic)
	}
	return epics, len(positions), nil
}
