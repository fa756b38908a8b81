package main

import (
	"context"
	"fmt"
	"time"

	"daily_trader/internal/models"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"
	"daily_trader/pkg/logger"
	"daily_trader/pkg/tracing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const stopTimeout = 15 * time.Second

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName("daily_trader")
	l, err := logger.Init(cfg.Log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() { _ = l.Sync() }))
	return l, nil
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	_, closer, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	lc.Append(fx.StopHook(closer))
	return nil
}

func common(ctx context.Context) fx.Option {
	return fx.Options(
		fx.Provide(
			func() context.Context {
				return ctx
			},
			newLogger,
		),
		config.Module(),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		fx.Invoke(initTracing),
	)
}

// runApp собирает fx приложение, достаёт targets, стартует, выполняет work
// и гасит приложение.
func runApp(ctx context.Context, opts fx.Option, work func(ctx context.Context) error, targets ...any) error {
	app := fx.New(
		common(ctx),
		opts,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	workErr := work(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil && workErr == nil {
		workErr = err
	}
	return workErr
}

func login(ctx context.Context, client *capital.Client, log *zap.Logger) (models.Session, error) {
	sess, err := client.Login(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("login: %w", err)
	}
	log.Info("logged in")
	return sess, nil
}
