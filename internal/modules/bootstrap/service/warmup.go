package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"daily_trader/internal/models"
	health "daily_trader/internal/modules/health/service"
	notify "daily_trader/internal/modules/notifier/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PriceSource interface {
	Prices(ctx context.Context, sess models.Session, epic string, max int) ([]models.Candle, error)
}

// warmupParallel одновременных запросов цен, чтобы не словить rate limit.
const warmupParallel = 4

// Warmuper заполняет last_price по REST до первых тиков стрима.
type Warmuper struct {
	prices  PriceSource
	metrics *health.Metrics
	n       notify.Notifier
	log     *zap.Logger
}

func NewWarmuper(prices PriceSource, metrics *health.Metrics, n notify.Notifier, log *zap.Logger) *Warmuper {
	return &Warmuper{
		prices:  prices,
		metrics: metrics,
		n:       n,
		log:     log.Named("warmup"),
	}
}

// Warmup ошибка по одному epic не отменяет остальные, возвращается первая.
func (w *Warmuper) Warmup(ctx context.Context, sess models.Session, epics []string) error {
	if len(epics) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(warmupParallel)
	var warmed atomic.Int32

	for _, epic := range epics {
		g.Go(func() error {
			candles, err := w.prices.Prices(ctx, sess, epic, 1)
			if err != nil {
				return fmt.Errorf("warmup %s: %w", epic, err)
			}
			if len(candles) == 0 {
				return nil
			}
			w.metrics.LastPrice.WithLabelValues(epic).Set(candles[len(candles)-1].Close)
			warmed.Add(1)
			return nil
		})
	}
	err := g.Wait()

	w.log.Info("warmup done", zap.Int("epics", len(epics)), zap.Int32("warmed", warmed.Load()))
	if err != nil {
		w.n.SendF(ctx, "⚠️ watch warmup finished with error: %v", err)
		return err
	}
	return nil
}
