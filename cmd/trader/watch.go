package main

import (
	"context"

	"daily_trader/internal/modules/bootstrap"
	bootstrapsvc "daily_trader/internal/modules/bootstrap/service"
	"daily_trader/internal/modules/capital_client"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/capital_stream"
	"daily_trader/internal/modules/health"
	"daily_trader/internal/modules/notifier"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream quotes of open positions and serve health and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				client  *capital.Client
				watcher *bootstrapsvc.Watcher
				log     *zap.Logger
			)
			opts := fx.Options(
				capital_client.Module(),
				capital_stream.Module(),
				notifier.Module(),
				health.Module(),
				bootstrap.Module(),
			)
			return runApp(cmd.Context(), opts, func(ctx context.Context) error {
				sess, err := login(ctx, client, log)
				if err != nil {
					return err
				}
				return watcher.Run(ctx, sess)
			}, &client, &watcher, &log)
		},
	}
}
