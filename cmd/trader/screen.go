package main

import (
	"context"
	"errors"
	"io/fs"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/ai"
	aisvc "daily_trader/internal/modules/ai/service"
	"daily_trader/internal/modules/capital_client"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"
	"daily_trader/internal/modules/strategy"
	strategysvc "daily_trader/internal/modules/strategy/service"
	"daily_trader/internal/steps"
	"daily_trader/pkg/jsonfile"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func universeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "universe",
		Short: "Scrape S&P 500 constituents and enrich them with broker markets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg    *config.Config
				client *capital.Client
				log    *zap.Logger
			)
			return runApp(cmd.Context(), capital_client.Module(), func(ctx context.Context) error {
				sess, err := login(ctx, client, log)
				if err != nil {
					return err
				}
				out, _, err := steps.NewUniverse(cfg, client, log).Run(ctx, sess)
				if err != nil {
					return err
				}
				return writeStep(log, cfg.DataFile(steps.FileCandidates), out)
			}, &cfg, &client, &log)
		},
	}
}

func technicalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "technical",
		Short: "Compute RSI/EMA/MACD on daily candles and filter candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg    *config.Config
				client *capital.Client
				filter strategysvc.Filter
				log    *zap.Logger
			)
			opts := fx.Options(capital_client.Module(), strategy.Module())
			return runApp(cmd.Context(), opts, func(ctx context.Context) error {
				var in []models.Stock
				if err := jsonfile.Read(cfg.DataFile(steps.FileCandidates), &in); err != nil {
					return err
				}
				sess, err := login(ctx, client, log)
				if err != nil {
					return err
				}
				out, _, err := steps.NewTechnical(cfg, client, filter, log).Run(ctx, sess, in)
				if err != nil {
					return err
				}
				return writeStep(log, cfg.DataFile(steps.FileFiltered), out)
			}, &cfg, &client, &filter, &log)
		},
	}
}

func sentimentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment",
		Short: "Score news and social headlines and keep stocks with positive sentiment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return transform(cmd.Context(), steps.FileFiltered, steps.FileSentiment,
				func(ctx context.Context, cfg *config.Config, log *zap.Logger, in []models.Stock) ([]models.Stock, error) {
					out, _, err := steps.NewSentiment(cfg, log).Run(ctx, in)
					return out, err
				})
		},
	}
}

func rankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Score filtered stocks and keep the top X",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return transform(cmd.Context(), steps.FileFiltered, steps.FileTopX,
				func(_ context.Context, cfg *config.Config, log *zap.Logger, in []models.Stock) ([]models.Stock, error) {
					var sentiment []models.Stock
					err := jsonfile.Read(cfg.DataFile(steps.FileSentiment), &sentiment)
					switch {
					case err == nil:
						in = steps.MergeSentiment(in, sentiment)
					case errors.Is(err, fs.ErrNotExist):
						log.Info("no sentiment file, ranking on technicals only")
					default:
						return nil, err
					}
					return steps.Rank(in, cfg.Screen.TopX), nil
				})
		},
	}
}

func commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment",
		Short: "Ask the AI service for a comment and a score per stock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg      *config.Config
				aiClient *aisvc.Client
				log      *zap.Logger
			)
			return runApp(cmd.Context(), ai.Module(), func(ctx context.Context) error {
				var in []models.Stock
				if err := jsonfile.Read(cfg.DataFile(steps.FileTopX), &in); err != nil {
					return err
				}
				out, err := aiClient.Analyze(ctx, in)
				if err != nil {
					return err
				}
				return writeStep(log, cfg.DataFile(steps.FileAI), out)
			}, &cfg, &aiClient, &log)
		},
	}
}

func sltpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sltp",
		Short: "Compute stop loss and take profit levels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return transform(cmd.Context(), steps.FileAI, steps.FileSLTP,
				func(_ context.Context, cfg *config.Config, _ *zap.Logger, in []models.Stock) ([]models.Stock, error) {
					return steps.ApplySLTP(in, cfg.SLTP), nil
				})
		},
	}
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Compute the position size factor per stock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return transform(cmd.Context(), steps.FileSLTP, steps.FileNormalized,
				func(_ context.Context, cfg *config.Config, log *zap.Logger, in []models.Stock) ([]models.Stock, error) {
					log.Info("target notional per trade", zap.String("value", steps.TargetNotional(cfg.Normalize).String()))
					return steps.ApplyNormalize(in, cfg.Normalize), nil
				})
		},
	}
}

type stepFn func(ctx context.Context, cfg *config.Config, log *zap.Logger, in []models.Stock) ([]models.Stock, error)

// transform шаг без внешних сервисов: файл -> функция -> файл.
func transform(ctx context.Context, from, to string, fn stepFn) error {
	var (
		cfg *config.Config
		log *zap.Logger
	)
	return runApp(ctx, fx.Options(), func(ctx context.Context) error {
		var in []models.Stock
		if err := jsonfile.Read(cfg.DataFile(from), &in); err != nil {
			return err
		}
		out, err := fn(ctx, cfg, log, in)
		if err != nil {
			return err
		}
		return writeStep(log, cfg.DataFile(to), out)
	}, &cfg, &log)
}

func writeStep(log *zap.Logger, path string, v []models.Stock) error {
	if err := jsonfile.Write(path, v); err != nil {
		return err
	}
	log.Info("step output saved", zap.String("path", path), zap.Int("stocks", len(v)))
	return nil
}
