package main

import (
	"context"
	"fmt"
	"os"

	"daily_trader/internal/modules/config"
	"daily_trader/internal/steps"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func pipelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline [steps...]",
		Short: "Run the configured steps one after another",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				log *zap.Logger
			)
			return runApp(cmd.Context(), fx.Options(), func(ctx context.Context) error {
				list := cfg.Pipeline.Steps
				if len(args) > 0 {
					list = args
				}
				return steps.NewPipeline(list, log).Run(ctx)
			}, &cfg, &log)
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			out, err := cfg.Dump()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(os.Stdout, string(out))
			return err
		},
	}
}
