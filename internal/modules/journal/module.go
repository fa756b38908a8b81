package journal

import (
	"context"
	"fmt"

	"daily_trader/internal/modules/config"
	"daily_trader/internal/modules/journal/service"
	"daily_trader/pkg/db"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStore Postgres, если задан journal.dsn, иначе журнал в памяти.
func NewStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Store, error) {
	if cfg.Journal.DSN == "" {
		log.Info("journal: no dsn, keeping records in memory")
		return service.NewMemory(), nil
	}

	poolMaster, err := db.NewPool(ctx, db.PoolConfig{
		DSN:      cfg.Journal.DSN,
		MaxConns: cfg.Journal.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create poolMaster: %w", err)
	}

	if err = poolMaster.Ping(ctx); err != nil {
		poolMaster.Close()
		return nil, fmt.Errorf("journal ping: %w", err)
	}

	return service.NewPostgres(ctx, db.NewPgTxManager(poolMaster))
}

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			NewStore,
		),
		fx.Invoke(func(lc fx.Lifecycle, s service.Store) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					s.Close()
					return nil
				},
			})
		}),
	)
}
