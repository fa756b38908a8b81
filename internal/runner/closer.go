package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnknownOpenDate причина пропуска позиции, у которой брокер не отдал дату открытия.
const ErrUnknownOpenDate = "unknown open date"

type Closer struct {
	broker   Broker
	journal  Journal
	notifier Notifier
	cfg      config.Close
	limiter  *rate.Limiter
	log      *zap.Logger
	now      func() time.Time
}

func NewCloser(cfg *config.Config, broker Broker, journal Journal, notifier Notifier, log *zap.Logger) *Closer {
	delay := cfg.Close.Delay
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Closer{
		broker:   broker,
		journal:  journal,
		notifier: notifier,
		cfg:      cfg.Close,
		limiter:  rate.NewLimiter(limit, 1),
		log:      log.Named("close"),
		now:      time.Now,
	}
}

type CloseReport struct {
	RunID     string               `json:"run_id"`
	Account   models.Account       `json:"account"`
	Threshold int                  `json:"threshold_business_days"`
	Positions []models.CloseRecord `json:"positions"`
	Closed    int                  `json:"closed"`
}

// Run закрывает встречным ордером всё, что держится не меньше AfterBusinessDays
// рабочих дней. Закрытия идут не чаще одного за Delay.
func (c *Closer) Run(ctx context.Context, sess models.Session, runID string) (CloseReport, error) {
	threshold := c.cfg.AfterBusinessDays
	if threshold <= 0 {
		threshold = 10
	}
	report := CloseReport{RunID: runID, Threshold: threshold}

	acc, err := c.broker.PreferredAccount(ctx, sess)
	if err != nil {
		return report, fmt.Errorf("account info: %w", err)
	}
	report.Account = acc
	c.log.Info("account",
		zap.String("accountId", acc.AccountID),
		zap.String("currency", acc.Currency),
		zap.Float64("balance", acc.Balance),
		zap.Float64("available", acc.Available),
		zap.Float64("profitLoss", acc.ProfitLoss),
	)

	positions, err := c.broker.OpenPositions(ctx, sess)
	if err != nil {
		return report, fmt.Errorf("open positions: %w", err)
	}
	if len(positions) == 0 {
		c.log.Info("no open positions")
		return report, nil
	}

	today := c.now().UTC()
	type item struct {
		pos models.ObservedPosition
		rec models.CloseRecord
	}
	items := make([]item, 0, len(positions))
	for _, p := range positions {
		rec := models.CloseRecord{
			DealID:     p.DealID,
			Epic:       p.Epic,
			Instrument: p.InstrumentName,
			Direction:  p.Direction,
			Size:       p.Size,
			OpenLevel:  p.EntryLevel,
			OpenedAt:   p.CreatedAt,
			Profit:     helper.Round2(UnrealizedProfit(p)),
		}
		// без даты открытия возраст неизвестен, такую позицию не трогаем
		if p.CreatedAt.IsZero() {
			rec.Error = ErrUnknownOpenDate
		} else {
			rec.BusinessDays = helper.BusinessDaysBetween(p.CreatedAt, today)
			rec.Due = rec.BusinessDays >= threshold
		}
		items = append(items, item{pos: p, rec: rec})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].rec.BusinessDays < items[j].rec.BusinessDays
	})

	for i := range items {
		it := &items[i]
		log := c.log.With(
			zap.Int("n", i+1),
			zap.String("instrument", it.rec.Instrument),
			zap.String("epic", it.rec.Epic),
			zap.String("dealId", it.rec.DealID),
			zap.String("direction", it.rec.Direction),
			zap.Float64("size", it.rec.Size),
			zap.Int("businessDays", it.rec.BusinessDays),
			zap.Float64("openLevel", it.rec.OpenLevel),
			zap.Float64("upl", it.rec.Profit),
		)
		if it.rec.Error != "" {
			log.Warn("position skipped", zap.String("reason", it.rec.Error))
		} else {
			log.Info("position")
		}

		if it.rec.Due {
			c.closeOne(ctx, sess, log, it.pos, &it.rec)
			if it.rec.Closed {
				report.Closed++
			}
		}

		report.Positions = append(report.Positions, it.rec)
		if err := c.journal.SaveClose(ctx, runID, it.rec); err != nil {
			log.Warn("journal write failed", zap.Error(err))
		}
	}

	c.log.Info("summary", zap.Int("closed", report.Closed), zap.Int("threshold", threshold))
	c.notifier.SendF(ctx, "close run %s: %d of %d positions closed (>= %d business days)",
		runID, report.Closed, len(positions), threshold)
	return report, nil
}

func (c *Closer) closeOne(ctx context.Context, sess models.Session, log *zap.Logger, pos models.ObservedPosition, rec *models.CloseRecord) {
	if c.cfg.DryRun {
		log.Info("dry run, would close")
		return
	}
	if err := c.limiter.Wait(ctx); err != nil {
		rec.Error = err.Error()
		return
	}

	log.Info("closing")
	if err := c.broker.ClosePosition(ctx, sess, pos); err != nil {
		log.Error("close failed", zap.Error(err))
		rec.Error = err.Error()
		return
	}
	rec.Closed = true
	log.Info("position closed")
}

// UnrealizedProfit upl брокера, а если его нет, то по текущей цене:
// bid для BUY, offer для SELL.
func UnrealizedProfit(p models.ObservedPosition) float64 {
	if p.UPL != nil {
		return *p.UPL
	}
	switch p.Direction {
	case models.DirectionBuy:
		if p.Bid > 0 {
			return (p.Bid - p.EntryLevel) * p.Size
		}
	case models.DirectionSell:
		if p.Offer > 0 {
			return (p.EntryLevel - p.Offer) * p.Size
		}
	}
	return 0
}
