package runner

import (
	"context"

	"daily_trader/internal/models"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"
	journal "daily_trader/internal/modules/journal/service"
	notify "daily_trader/internal/modules/notifier/service"
	"daily_trader/internal/reconcile"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// pollingBroker снапшоты при сверке запрашиваются без повторов:
// неудачный запрос просто расходует одну попытку опроса.
type pollingBroker struct {
	client *capital.Client
}

func (b pollingBroker) OpenPositions(ctx context.Context, sess models.Session) ([]models.ObservedPosition, error) {
	return b.client.OpenPositions(capital.WithoutRetry(ctx), sess)
}

func (b pollingBroker) UpdatePosition(ctx context.Context, sess models.Session, dealID string, upd models.LevelUpdate) error {
	return b.client.UpdatePosition(capital.WithoutRetry(ctx), sess, dealID, upd)
}

func NewReconciler(cfg *config.Config, client *capital.Client, log *zap.Logger) *reconcile.Reconciler {
	policy := reconcile.NewPolicy(cfg.Reconcile.MaxAttempts, cfg.Reconcile.Delay, cfg.Reconcile.Tolerance)
	return reconcile.New(pollingBroker{client: client}, policy, reconcile.RealClock, log)
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewReconciler,
			func(c *capital.Client) Broker { return c },
			func(s journal.Store) Journal { return s },
			func(n notify.Notifier) Notifier { return n },
			NewOpener,
			NewCloser,
		),
	)
}
