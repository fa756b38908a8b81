package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/capital_client"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"
	"daily_trader/internal/modules/mailer"
	mailersvc "daily_trader/internal/modules/mailer/service"
	"daily_trader/internal/steps"
	"daily_trader/pkg/jsonfile"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Render the HTML report from the SL/TP file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg *config.Config
				log *zap.Logger
			)
			return runApp(cmd.Context(), fx.Options(), func(ctx context.Context) error {
				var in []models.Stock
				if err := jsonfile.Read(cfg.DataFile(steps.FileSLTP), &in); err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := steps.RenderReport(&buf, cfg.Report.Title, in, time.Now()); err != nil {
					return err
				}
				log.Info("report rendered", zap.Int("stocks", len(in)))
				return writeHTML(log, cfg.DataFile(steps.FileReport), buf.Bytes())
			}, &cfg, &log)
		},
	}
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Mail the HTML report through Mailjet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg *config.Config
				m   *mailersvc.Mailer
			)
			return runApp(cmd.Context(), mailer.Module(), func(ctx context.Context) error {
				return m.SendReport(ctx, cfg.DataFile(steps.FileReport))
			}, &cfg, &m)
		},
	}
}

func archiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Copy today's picks into the history directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cfg *config.Config
				log *zap.Logger
			)
			return runApp(cmd.Context(), fx.Options(), func(ctx context.Context) error {
				dst, err := steps.Archive(cfg.DataFile(steps.FileNormalized), cfg.Paths.HistoryDir, time.Now())
				if err != nil {
					return err
				}
				log.Info("archived", zap.String("path", dst))
				return nil
			}, &cfg, &log)
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Check archived picks for SL/TP hits and render the analysis report",
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
				results, _, err := steps.NewAnalyzer(cfg, client, log).Run(ctx, sess, cfg.Paths.HistoryDir)
				if err != nil {
					return err
				}

				path := cfg.DataFile(steps.FileAnalyze)
				if err := jsonfile.Write(path, results); err != nil {
					return err
				}
				log.Info("analysis saved", zap.String("path", path), zap.Int("trades", len(results)))

				var buf bytes.Buffer
				if err := steps.RenderAnalysis(&buf, results, time.Now()); err != nil {
					return err
				}
				return writeHTML(log, cfg.DataFile(steps.FileAnalyzeReport), buf.Bytes())
			}, &cfg, &client, &log)
		},
	}
}

func writeHTML(log *zap.Logger, path string, html []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return err
	}
	log.Info("html saved", zap.String("path", path))
	return nil
}
