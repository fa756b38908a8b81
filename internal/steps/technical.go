package steps

import (
	"context"
	"errors"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"
	strategy "daily_trader/internal/modules/strategy/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PriceSource interface {
	Prices(ctx context.Context, sess models.Session, epic string, max int) ([]models.Candle, error)
}

type TechnicalStats struct {
	Total      int `json:"total"`
	NoData     int `json:"no_data"`
	VolumeOut  int `json:"volume_filtered"`
	PercentOut int `json:"percent_filtered"`
	RSIOut     int `json:"rsi_filtered"`
	Passed     int `json:"passed"`
}

// Technical индикаторы по дневным свечам брокера плюс технический фильтр.
type Technical struct {
	prices  PriceSource
	filter  strategy.Filter
	threads int
	days    int
	log     *zap.Logger
}

func NewTechnical(cfg *config.Config, prices PriceSource, filter strategy.Filter, log *zap.Logger) *Technical {
	threads := cfg.Screen.Threads
	if threads <= 0 {
		threads = 5
	}
	days := cfg.Screen.HistoryDays
	if days < strategy.MinCandles {
		days = 60
	}
	return &Technical{prices: prices, filter: filter, threads: threads, days: days, log: log.Named("technical")}
}

type techResult struct {
	ind    strategy.Indicators
	reason string
	ok     bool
}

// Run порядок выхода совпадает с порядком входа.
func (t *Technical) Run(ctx context.Context, sess models.Session, candidates []models.Stock) ([]models.Stock, TechnicalStats, error) {
	stats := TechnicalStats{Total: len(candidates)}
	results := make([]techResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.threads)
	for i, c := range candidates {
		g.Go(func() error {
			if c.Epic == "" {
				return nil
			}
			candles, err := t.prices.Prices(gctx, sess, c.Epic, t.days)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				t.log.Warn("prices failed", zap.String("ticker", c.Ticker), zap.Error(err))
				return nil
			}
			ind, err := strategy.Compute(candles, c.Price)
			if err != nil {
				t.log.Debug("no indicators", zap.String("ticker", c.Ticker), zap.Error(err))
				return nil
			}
			results[i] = techResult{ind: ind, reason: t.filter.Reject(ind), ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	var out []models.Stock
	for i, r := range results {
		if !r.ok {
			stats.NoData++
			continue
		}
		switch r.reason {
		case strategy.RejectVolume:
			stats.VolumeOut++
			continue
		case strategy.RejectPercent:
			stats.PercentOut++
			continue
		case strategy.RejectRSI:
			stats.RSIOut++
			continue
		}
		out = append(out, applyIndicators(candidates[i], r.ind))
	}
	stats.Passed = len(out)

	t.log.Info("technical filtered",
		zap.Int("total", stats.Total),
		zap.Int("no_data", stats.NoData),
		zap.Int("volume_filtered", stats.VolumeOut),
		zap.Int("percent_filtered", stats.PercentOut),
		zap.Int("rsi_filtered", stats.RSIOut),
		zap.Int("passed", stats.Passed),
	)
	return out, stats, nil
}

func applyIndicators(s models.Stock, ind strategy.Indicators) models.Stock {
	s.Price = ind.Price
	s.RSI = ind.RSI
	s.MACD = ind.MACD
	s.MACDSignal = ind.MACDSignal
	s.EMA20 = ind.EMA20
	s.Volume = ind.Volume
	s.PercentChange = ind.PercentChange
	s.Momentum = ind.Momentum
	s.BuyScore = strategy.BuyScore(ind)
	s.Recommendation = strategy.Classify(s.BuyScore)
	return s
}
