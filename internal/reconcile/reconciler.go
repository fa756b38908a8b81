package reconcile

import (
	"context"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"

	"go.uber.org/zap"
)

// Broker две операции брокера, которые нужны сверке.
type Broker interface {
	OpenPositions(ctx context.Context, sess models.Session) ([]models.ObservedPosition, error)
	UpdatePosition(ctx context.Context, sess models.Session, dealID string, upd models.LevelUpdate) error
}

// Reconciler после открытия позиции убеждается, что SL/TP реально стоят у брокера.
// Каждый вызов Reconcile независим и ничего не хранит между вызовами.
type Reconciler struct {
	broker Broker
	policy Policy
	clock  Clock
	log    *zap.Logger
}

func New(broker Broker, policy Policy, clock Clock, log *zap.Logger) *Reconciler {
	if clock == nil {
		clock = RealClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		broker: broker,
		policy: policy.normalized(),
		clock:  clock,
		log:    log.Named("reconcile"),
	}
}

func (r *Reconciler) Policy() Policy { return r.policy }

// Reconcile опрашивает снапшот позиций до совпадения уровней или до исчерпания попыток.
// Недостающие уровни дозаполняются не более чем одним UpdatePosition.
// Ошибки брокера не возвращаются: они расходуют попытку и попадают в лог.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	sess models.Session,
	dealReference string,
	desiredStop, desiredTake *float64,
) Result {
	res := Result{DealReference: dealReference}

	log := r.log.With(
		zap.String("dealReference", dealReference),
		zap.String("desiredStop", helper.FormatLevel(desiredStop)),
		zap.String("desiredTake", helper.FormatLevel(desiredTake)),
	)

	if desiredStop == nil && desiredTake == nil {
		log.Info("no levels requested, nothing to verify")
		res.Outcome = Verified
		return res
	}

	var (
		seen           bool
		updateDecided  bool
		stopOK, takeOK bool
	)

	attempt := func(ctx context.Context, i int) (struct{}, bool) {
		alog := log.With(zap.Int("attempt", i), zap.Int("of", r.policy.MaxAttempts))

		positions, err := r.broker.OpenPositions(ctx, sess)
		if err != nil {
			alog.Warn("positions fetch failed, counted as not found", zap.Error(err))
			return struct{}{}, false
		}

		pos, ok := findByDealReference(positions, dealReference)
		if !ok {
			alog.Info("deal not visible yet")
			return struct{}{}, false
		}

		seen = true
		res.DealID = pos.DealID
		res.ObservedStop = pos.StopLevel
		res.ObservedTake = pos.TakeLevel

		stopOK = r.policy.satisfied(pos.StopLevel, desiredStop)
		takeOK = r.policy.satisfied(pos.TakeLevel, desiredTake)

		alog.Info("observed",
			zap.String("dealId", pos.DealID),
			zap.String("stop", helper.FormatLevel(pos.StopLevel)),
			zap.String("take", helper.FormatLevel(pos.TakeLevel)),
			zap.Bool("stopOK", stopOK),
			zap.Bool("takeOK", takeOK),
		)

		if stopOK && takeOK {
			return struct{}{}, true
		}

		if !updateDecided {
			updateDecided = true
			r.correct(ctx, sess, alog, pos, desiredStop, desiredTake, &res)
		}
		return struct{}{}, false
	}

	_, made, err := PollUntil(ctx, r.clock, r.policy.MaxAttempts, r.policy.Delay, attempt)
	res.Attempts = made
	if err != nil {
		log.Warn("reconciliation interrupted", zap.Error(err), zap.Int("attempts", made))
	}

	switch {
	case seen && stopOK && takeOK:
		res.Outcome = Verified
		log.Info("levels verified", zap.Int("attempts", made))
	case !seen:
		res.Outcome = Failed
		log.Error("deal never appeared in open positions, inspect the account manually",
			zap.Int("attempts", made))
	case res.UpdateIssued && desiredStop != nil && desiredTake != nil && stopOK != takeOK:
		res.Outcome = PartiallyUpdated
		log.Warn("only one level confirmed after update",
			zap.Bool("stopOK", stopOK), zap.Bool("takeOK", takeOK), zap.Int("attempts", made))
	default:
		res.Outcome = NotConfirmed
		log.Warn("levels not confirmed, position left open as is",
			zap.String("stop", helper.FormatLevel(res.ObservedStop)),
			zap.String("take", helper.FormatLevel(res.ObservedTake)),
			zap.Int("attempts", made))
	}
	return res
}

// correct отправляет единственное исправление: только уровни, которых нет на позиции.
// Уже стоящий уровень не перезаписывается, даже если отличается от желаемого.
func (r *Reconciler) correct(
	ctx context.Context,
	sess models.Session,
	log *zap.Logger,
	pos models.ObservedPosition,
	desiredStop, desiredTake *float64,
	res *Result,
) {
	upd := MissingLevels(pos, desiredStop, desiredTake)
	if upd.Empty() {
		log.Info("levels already set, skip update")
		return
	}

	res.UpdateIssued = true
	res.UpdatePayload = upd

	if err := r.broker.UpdatePosition(ctx, sess, pos.DealID, upd); err != nil {
		res.UpdateErr = err
		log.Warn("update rejected, keep verifying", zap.Error(err))
		return
	}
	log.Info("update sent",
		zap.String("stop", helper.FormatLevel(upd.StopLevel)),
		zap.String("take", helper.FormatLevel(upd.TakeLevel)),
	)
}

// MissingLevels уровни, которые заданы желаемыми и отсутствуют на позиции.
func MissingLevels(pos models.ObservedPosition, desiredStop, desiredTake *float64) models.LevelUpdate {
	var upd models.LevelUpdate
	if pos.StopLevel == nil && desiredStop != nil {
		upd.StopLevel = helper.Ptr(*desiredStop)
	}
	if pos.TakeLevel == nil && desiredTake != nil {
		upd.TakeLevel = helper.Ptr(*desiredTake)
	}
	return upd
}

func findByDealReference(positions []models.ObservedPosition, ref string) (models.ObservedPosition, bool) {
	for _, p := range positions {
		if p.DealReference == ref {
			return p, true
		}
	}
	return models.ObservedPosition{}, false
}
