package main

import (
	"context"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/capital_client"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"
	"daily_trader/internal/modules/journal"
	journalsvc "daily_trader/internal/modules/journal/service"
	"daily_trader/internal/modules/notifier"
	"daily_trader/internal/runner"
	"daily_trader/internal/steps"
	"daily_trader/pkg/jsonfile"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func tradeModules() fx.Option {
	return fx.Options(
		capital_client.Module(),
		journal.Module(),
		notifier.Module(),
		runner.Module(),
	)
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open positions from the normalized picks and reconcile their levels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg    *config.Config
				client *capital.Client
				opener *runner.Opener
				log    *zap.Logger
			)
			return runApp(cmd.Context(), tradeModules(), func(ctx context.Context) error {
				var picks []models.Stock
				if err := jsonfile.Read(cfg.DataFile(steps.FileNormalized), &picks); err != nil {
					return err
				}
				sess, err := login(ctx, client, log)
				if err != nil {
					return err
				}
				report, err := opener.Run(ctx, sess, journalsvc.NewRunID(), picks)
				if werr := jsonfile.Write(cfg.DataFile(steps.FileOpen), report); werr != nil {
					log.Error("save open report", zap.Error(werr))
				}
				return err
			}, &cfg, &client, &opener, &log)
		},
	}
}

func closeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close positions held for the configured number of business days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg    *config.Config
				client *capital.Client
				closer *runner.Closer
				log    *zap.Logger
			)
			opts := tradeModules()
			if dryRun {
				opts = fx.Options(opts, fx.Decorate(func(c *config.Config) *config.Config {
					c.Close.DryRun = true
					return c
				}))
			}
			return runApp(cmd.Context(), opts, func(ctx context.Context) error {
				sess, err := login(ctx, client, log)
				if err != nil {
					return err
				}
				report, err := closer.Run(ctx, sess, journalsvc.NewRunID())
				if werr := jsonfile.Write(cfg.DataFile(steps.FileClose), report); werr != nil {
					log.Error("save close report", zap.Error(werr))
				}
				return err
			}, &cfg, &client, &closer, &log)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report due positions without closing them")
	return cmd
}
