package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollUntilStopsEarly(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	v, made, err := PollUntil(context.Background(), clock, 5, time.Second, func(ctx context.Context, i int) (int, bool) {
		calls++
		return i * 10, i == 3
	})

	require.NoError(t, err)
	assert.Equal(t, 30, v)
	assert.Equal(t, 3, made)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)
}

func TestPollUntilNoSleepAfterLastAttempt(t *testing.T) {
	clock := &fakeClock{}

	_, made, err := PollUntil(context.Background(), clock, 4, time.Millisecond, func(ctx context.Context, i int) (struct{}, bool) {
		return struct{}{}, false
	})

	require.NoError(t, err)
	assert.Equal(t, 4, made)
	assert.Equal(t, 3, clock.count())
}

func TestPollUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, made, err := PollUntil(ctx, &fakeClock{}, 3, time.Second, func(ctx context.Context, i int) (bool, bool) {
		return true, true
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, made)
}

func TestRealClockHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := RealClock.Sleep(ctx, time.Minute)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPolicyDefaults(t *testing.T) {
	p := NewPolicy(0, -time.Second, 0)

	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	assert.Zero(t, p.Delay)
	assert.True(t, p.Equal(1.5, 1.5))
	assert.False(t, p.Equal(1.5, 1.5000001))

	assert.True(t, p.satisfied(nil, nil))
	assert.True(t, p.satisfied(lvl(3), nil))
	assert.False(t, p.satisfied(nil, lvl(3)))
}
