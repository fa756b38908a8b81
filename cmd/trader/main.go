package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "trader",
		Short:         "Daily S&P 500 screening and Capital.com position management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// конфиг читается по CONFIG_FILE, флаг просто выставляет его
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default configs/values_local.yaml)")

	root.AddCommand(
		universeCmd(),
		technicalCmd(),
		sentimentCmd(),
		rankCmd(),
		commentCmd(),
		sltpCmd(),
		normalizeCmd(),
		reportCmd(),
		sendCmd(),
		archiveCmd(),
		analyzeCmd(),
		openCmd(),
		closeCmd(),
		watchCmd(),
		pipelineCmd(),
		configCmd(),
	)
	return root
}
