package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"daily_trader/internal/models"

	"github.com/stretchr/testify/mock"
)

// fakeClock копит запрошенные паузы вместо сна.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
	// cancelAfter отменяет ctx на n-й паузе, если > 0
	cancelAfter int
	cancel      context.CancelFunc
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	n := len(c.sleeps)
	c.mu.Unlock()

	if c.cancelAfter > 0 && n >= c.cancelAfter && c.cancel != nil {
		c.cancel()
	}
	return ctx.Err()
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

var errBroker = errors.New("broker unavailable")

// snapshot один ответ OpenPositions: позиции или ошибка.
type snapshot struct {
	positions []models.ObservedPosition
	err       error
}

// scriptedBroker отдаёт снапшоты по очереди, последний повторяется.
type scriptedBroker struct {
	mock.Mock

	mu        sync.Mutex
	snapshots []snapshot
	fetches   int
}

func (b *scriptedBroker) OpenPositions(ctx context.Context, sess models.Session) ([]models.ObservedPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.fetches
	if i >= len(b.snapshots) {
		i = len(b.snapshots) - 1
	}
	b.fetches++
	if i < 0 {
		return nil, nil
	}
	s := b.snapshots[i]
	return s.positions, s.err
}

func (b *scriptedBroker) UpdatePosition(ctx context.Context, sess models.Session, dealID string, upd models.LevelUpdate) error {
	args := b.Called(dealID, upd)
	return args.Error(0)
}

func (b *scriptedBroker) fetchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches
}

func lvl(v float64) *float64 { return &v }

func position(ref string, stop, take *float64) models.ObservedPosition {
	return models.ObservedPosition{
		DealID:        "DEAL-" + ref,
		DealReference: ref,
		Direction:     models.DirectionBuy,
		Size:          1,
		EntryLevel:    100,
		StopLevel:     stop,
		TakeLevel:     take,
	}
}

func found(ps ...models.ObservedPosition) snapshot { return snapshot{positions: ps} }

func empty() snapshot { return snapshot{} }

func failing() snapshot { return snapshot{err: errBroker} }
