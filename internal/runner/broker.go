package runner

import (
	"context"

	"daily_trader/internal/models"
)

// Broker операции брокера, которые нужны открытию и закрытию.
type Broker interface {
	Markets(ctx context.Context, sess models.Session, searchTerm string) ([]models.Market, error)
	MarketDetails(ctx context.Context, sess models.Session, epic string) (models.Market, error)
	OpenPosition(ctx context.Context, sess models.Session, in models.PositionIntent) (string, error)
	Confirm(ctx context.Context, sess models.Session, dealReference string) (models.DealConfirmation, error)
	OpenPositions(ctx context.Context, sess models.Session) ([]models.ObservedPosition, error)
	UpdatePosition(ctx context.Context, sess models.Session, dealID string, upd models.LevelUpdate) error
	ClosePosition(ctx context.Context, sess models.Session, pos models.ObservedPosition) error
	PreferredAccount(ctx context.Context, sess models.Session) (models.Account, error)
}

// Journal куда пишем итоги запуска.
type Journal interface {
	SaveOpen(ctx context.Context, runID string, rec models.OpenRecord) error
	SaveClose(ctx context.Context, runID string, rec models.CloseRecord) error
}

type Notifier interface {
	SendF(ctx context.Context, format string, args ...any)
}
