package runner

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"
	"daily_trader/internal/reconcile"

	"go.uber.org/zap"
)

type Opener struct {
	broker   Broker
	rec      *reconcile.Reconciler
	journal  Journal
	notifier Notifier
	cfg      config.Open
	log      *zap.Logger
	now      func() time.Time
}

func NewOpener(
	cfg *config.Config,
	broker Broker,
	rec *reconcile.Reconciler,
	journal Journal,
	notifier Notifier,
	log *zap.Logger,
) *Opener {
	return &Opener{
		broker:   broker,
		rec:      rec,
		journal:  journal,
		notifier: notifier,
		cfg:      cfg.Open,
		log:      log.Named("open"),
		now:      time.Now,
	}
}

type OpenReport struct {
	RunID   string              `json:"run_id"`
	Records []models.OpenRecord `json:"records"`
}

func (r OpenReport) Count(status string) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

// Run открывает позиции по списку picks в порядке файла, не больше MaxPositions
// за запуск. Неторгуемые рынки тоже расходуют лимит, тикеры без рынка нет.
func (o *Opener) Run(ctx context.Context, sess models.Session, runID string, picks []models.Stock) (OpenReport, error) {
	report := OpenReport{RunID: runID}

	markets, err := o.broker.Markets(ctx, sess, "")
	if err != nil {
		return report, fmt.Errorf("load markets: %w", err)
	}
	shares := capital.SharesBySymbol(markets)
	o.log.Info("markets loaded", zap.Int("total", len(markets)), zap.Int("shares", len(shares)))

	limit := o.cfg.MaxPositions
	if limit <= 0 {
		limit = 5
	}

	count := 0
	for _, item := range picks {
		if count >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		m, ok := shares[item.Ticker]
		if !ok {
			o.log.Info("not found in SHARES, skipping", zap.String("ticker", item.Ticker))
			o.record(ctx, &report, models.OpenRecord{
				Ticker: item.Ticker,
				Status: models.OpenStatusSkipped,
				Reason: "market not found",
			})
			continue
		}

		count++
		log := o.log.With(
			zap.Int("n", count),
			zap.String("ticker", item.Ticker),
			zap.String("epic", m.Epic),
			zap.String("status", m.MarketStatus),
			zap.Float64("offer", m.Offer),
		)

		if !m.Tradeable() {
			log.Info("market not TRADEABLE, skipping")
			o.record(ctx, &report, models.OpenRecord{
				Ticker: item.Ticker,
				Epic:   m.Epic,
				Name:   m.InstrumentName,
				Status: models.OpenStatusSkipped,
				Reason: "market status " + m.MarketStatus,
			})
			continue
		}

		rec := o.openOne(ctx, sess, log, item, m)
		o.record(ctx, &report, rec)
	}

	o.notifier.SendF(ctx, "open run %s: opened=%d skipped=%d failed=%d",
		runID,
		report.Count(models.OpenStatusOpened),
		report.Count(models.OpenStatusSkipped),
		report.Count(models.OpenStatusFailed),
	)
	return report, nil
}

func (o *Opener) openOne(ctx context.Context, sess models.Session, log *zap.Logger, item models.Stock, m models.Market) models.OpenRecord {
	intent := o.intentFor(item, m)
	rec := models.OpenRecord{
		Ticker:      item.Ticker,
		Epic:        m.Epic,
		Name:        m.InstrumentName,
		Direction:   intent.Direction,
		Size:        intent.Size,
		DesiredStop: intent.StopLevel,
		DesiredTake: intent.TakeLevel,
	}

	o.checkDistance(ctx, sess, log, intent, m)

	order := intent
	if !o.cfg.AttachLevels {
		order.StopLevel = nil
		order.TakeLevel = nil
	}

	ref, err := o.broker.OpenPosition(ctx, sess, order)
	if err != nil {
		log.Error("order failed", zap.Error(err))
		rec.Status = models.OpenStatusFailed
		rec.Reason = err.Error()
		return rec
	}
	rec.DealReference = ref
	log.Info("order accepted",
		zap.String("dealReference", ref),
		zap.String("direction", intent.Direction),
		zap.Float64("size", intent.Size),
		zap.String("sl", helper.FormatLevel(intent.StopLevel)),
		zap.String("tp", helper.FormatLevel(intent.TakeLevel)),
		zap.Float64("jsonPrice", item.Price),
	)

	if conf, err := o.broker.Confirm(ctx, sess, ref); err != nil {
		log.Warn("confirm failed, reconciling anyway", zap.Error(err))
	} else if strings.EqualFold(conf.DealStatus, "REJECTED") {
		log.Error("deal rejected", zap.String("reason", conf.Reason))
		rec.Status = models.OpenStatusFailed
		rec.Reason = "rejected: " + conf.Reason
		rec.Outcome = string(reconcile.Failed)
		return rec
	}

	res := o.rec.Reconcile(ctx, sess, ref, intent.StopLevel, intent.TakeLevel)
	rec.Status = models.OpenStatusOpened
	rec.DealID = res.DealID
	rec.Outcome = string(res.Outcome)
	rec.ObservedStop = res.ObservedStop
	rec.ObservedTake = res.ObservedTake
	rec.Attempts = res.Attempts
	rec.UpdateIssued = res.UpdateIssued
	if !res.Outcome.OK() {
		rec.Reason = "levels " + strings.ToLower(string(res.Outcome))
		o.notifier.SendF(ctx, "%s %s: SL/TP %s (stop=%s take=%s), check the position",
			item.Ticker, ref, res.Outcome,
			helper.FormatLevel(res.ObservedStop), helper.FormatLevel(res.ObservedTake))
	}
	return rec
}

// intentFor размер из Normalize, иначе DefaultSize. Уровни <= 0 не задаём.
func (o *Opener) intentFor(item models.Stock, m models.Market) models.PositionIntent {
	size := o.cfg.DefaultSize
	if size <= 0 {
		size = 1
	}
	if item.Factor != nil && *item.Factor > 0 {
		size = *item.Factor
	}

	dir := strings.ToUpper(o.cfg.Direction)
	if dir != models.DirectionSell {
		dir = models.DirectionBuy
	}

	in := models.PositionIntent{
		Symbol:    item.Ticker,
		Epic:      m.Epic,
		Direction: dir,
		Size:      size,
	}
	if item.SL > 0 {
		in.StopLevel = helper.Ptr(item.SL)
	}
	if item.TP > 0 {
		in.TakeLevel = helper.Ptr(item.TP)
	}
	return in
}

// checkDistance только предупреждает: брокер сам отклонит слишком близкий уровень.
func (o *Opener) checkDistance(ctx context.Context, sess models.Session, log *zap.Logger, in models.PositionIntent, m models.Market) {
	if in.StopLevel == nil && in.TakeLevel == nil {
		return
	}
	details, err := o.broker.MarketDetails(ctx, sess, m.Epic)
	if err != nil {
		log.Debug("market details unavailable", zap.Error(err))
		return
	}
	minDist := details.MinStopOrLimitDistance
	ref := details.Offer
	if ref <= 0 {
		ref = m.Offer
	}
	if minDist <= 0 || ref <= 0 {
		return
	}
	for name, lvl := range map[string]*float64{"stop": in.StopLevel, "take": in.TakeLevel} {
		if lvl != nil && math.Abs(ref-*lvl) < minDist {
			log.Warn("level closer than broker minimum distance",
				zap.String("level", name),
				zap.Float64("value", *lvl),
				zap.Float64("minDistance", minDist),
				zap.Float64("offer", ref),
			)
		}
	}
}

func (o *Opener) record(ctx context.Context, report *OpenReport, rec models.OpenRecord) {
	rec.At = o.now().UTC()
	report.Records = append(report.Records, rec)
	if err := o.journal.SaveOpen(ctx, report.RunID, rec); err != nil {
		o.log.Warn("journal write failed", zap.String("ticker", rec.Ticker), zap.Error(err))
	}
}
