package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"
	"daily_trader/internal/reconcile"

	"go.uber.org/zap"
)

// fakeBroker открытые позиции появляются сразу с уровнями из ордера,
// если не выставлен dropLevels.
type fakeBroker struct {
	mu sync.Mutex

	markets    []models.Market
	account    models.Account
	positions  []models.ObservedPosition
	rejected   map[string]bool
	openErr    map[string]error
	closeErr   map[string]error
	dropLevels bool

	opened  []models.PositionIntent
	updates []models.LevelUpdate
	closed  []string
	closeAt []time.Time
	seq     int
}

func (b *fakeBroker) Markets(ctx context.Context, sess models.Session, searchTerm string) ([]models.Market, error) {
	return b.markets, nil
}

func (b *fakeBroker) MarketDetails(ctx context.Context, sess models.Session, epic string) (models.Market, error) {
	for _, m := range b.markets {
		if m.Epic == epic {
			return m, nil
		}
	}
	return models.Market{}, fmt.Errorf("no market %s", epic)
}

func (b *fakeBroker) OpenPosition(ctx context.Context, sess models.Session, in models.PositionIntent) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.openErr[in.Epic]; err != nil {
		return "", err
	}
	b.seq++
	ref := fmt.Sprintf("REF-%d", b.seq)
	b.opened = append(b.opened, in)

	pos := models.ObservedPosition{
		DealID:        fmt.Sprintf("DEAL-%d", b.seq),
		DealReference: ref,
		Direction:     in.Direction,
		Size:          in.Size,
		Epic:          in.Epic,
	}
	if !b.dropLevels {
		pos.StopLevel = in.StopLevel
		pos.TakeLevel = in.TakeLevel
	}
	b.positions = append(b.positions, pos)
	return ref, nil
}

func (b *fakeBroker) Confirm(ctx context.Context, sess models.Session, ref string) (models.DealConfirmation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := "ACCEPTED"
	for _, in := range b.opened {
		if b.rejected[in.Epic] {
			status = "REJECTED"
		}
	}
	return models.DealConfirmation{DealReference: ref, DealStatus: status, Reason: "market closed"}, nil
}

func (b *fakeBroker) OpenPositions(ctx context.Context, sess models.Session) ([]models.ObservedPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.ObservedPosition(nil), b.positions...), nil
}

func (b *fakeBroker) UpdatePosition(ctx context.Context, sess models.Session, dealID string, upd models.LevelUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.updates = append(b.updates, upd)
	for i := range b.positions {
		if b.positions[i].DealID == dealID {
			if upd.StopLevel != nil {
				b.positions[i].StopLevel = upd.StopLevel
			}
			if upd.TakeLevel != nil {
				b.positions[i].TakeLevel = upd.TakeLevel
			}
		}
	}
	return nil
}

func (b *fakeBroker) ClosePosition(ctx context.Context, sess models.Session, pos models.ObservedPosition) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.closeErr[pos.DealID]; err != nil {
		return err
	}
	b.closed = append(b.closed, pos.DealID)
	b.closeAt = append(b.closeAt, time.Now())
	return nil
}

func (b *fakeBroker) PreferredAccount(ctx context.Context, sess models.Session) (models.Account, error) {
	return b.account, nil
}

type memJournal struct {
	opens  []models.OpenRecord
	closes []models.CloseRecord
}

func (j *memJournal) SaveOpen(ctx context.Context, runID string, rec models.OpenRecord) error {
	j.opens = append(j.opens, rec)
	return nil
}

func (j *memJournal) SaveClose(ctx context.Context, runID string, rec models.CloseRecord) error {
	j.closes = append(j.closes, rec)
	return nil
}

type nopNotifier struct{ msgs []string }

func (n *nopNotifier) SendF(ctx context.Context, format string, args ...any) {
	n.msgs = append(n.msgs, fmt.Sprintf(format, args...))
}

type instantClock struct{}

func (instantClock) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Open.MaxPositions = 5
	cfg.Open.DefaultSize = 1
	cfg.Open.Direction = "BUY"
	cfg.Close.AfterBusinessDays = 10
	cfg.Close.Delay = 20 * time.Millisecond
	return cfg
}

func newTestOpener(cfg *config.Config, b *fakeBroker, j *memJournal, n *nopNotifier) *Opener {
	rec := reconcile.New(b, reconcile.DefaultPolicy(), instantClock{}, zap.NewNop())
	return NewOpener(cfg, b, rec, j, n, zap.NewNop())
}

func share(symbol, status string) models.Market {
	return models.Market{
		Epic:           symbol,
		Symbol:         symbol,
		InstrumentName: symbol + " Inc",
		InstrumentType: models.InstrumentShares,
		MarketStatus:   status,
		Offer:          100,
	}
}
