package reconcile

import (
	"context"
	"testing"
	"time"

	"daily_trader/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sess = models.Session{CST: "c", SecurityToken: "s"}

func newReconciler(b Broker, clock Clock) *Reconciler {
	return New(b, DefaultPolicy(), clock, zap.NewNop())
}

func TestBothAbsentVerifiedWithoutPolling(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{found(position("R1", nil, nil))}}
	clock := &fakeClock{}

	res := newReconciler(b, clock).Reconcile(context.Background(), sess, "R1", nil, nil)

	assert.Equal(t, Verified, res.Outcome)
	assert.Zero(t, res.Attempts)
	assert.Zero(t, b.fetchCount())
	assert.Zero(t, clock.count())
	b.AssertNotCalled(t, "UpdatePosition", mock.Anything, mock.Anything)
}

func TestFirstPollMatchVerifiedAfterOnePoll(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{found(position("R1", lvl(95), lvl(110)))}}
	clock := &fakeClock{}

	res := newReconciler(b, clock).Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))

	assert.Equal(t, Verified, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, b.fetchCount())
	assert.Zero(t, clock.count())
	assert.False(t, res.UpdateIssued)
	assert.Equal(t, "DEAL-R1", res.DealID)
	b.AssertNotCalled(t, "UpdatePosition", mock.Anything, mock.Anything)
}

func TestNeverFoundFailedWithoutUpdate(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{found(position("OTHER", nil, nil))}}
	clock := &fakeClock{}

	res := newReconciler(b, clock).Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))

	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, DefaultMaxAttempts, res.Attempts)
	assert.Equal(t, DefaultMaxAttempts, b.fetchCount())
	assert.Equal(t, DefaultMaxAttempts-1, clock.count())
	assert.Nil(t, res.ObservedStop)
	assert.Nil(t, res.ObservedTake)
	b.AssertNotCalled(t, "UpdatePosition", mock.Anything, mock.Anything)
}

func TestFetchErrorsConsumeAttempts(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{failing()}}
	clock := &fakeClock{}

	res := newReconciler(b, clock).Reconcile(context.Background(), sess, "R1", lvl(95), nil)

	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, DefaultMaxAttempts, b.fetchCount())
}

func TestUpdateFillsBothMissingThenVerified(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{
		found(position("R1", nil, nil)),
		found(position("R1", lvl(95), lvl(110))),
	}}
	b.On("UpdatePosition", "DEAL-R1", models.LevelUpdate{StopLevel: lvl(95), TakeLevel: lvl(110)}).Return(nil).Once()
	clock := &fakeClock{}

	res := newReconciler(b, clock).Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))

	assert.Equal(t, Verified, res.Outcome)
	assert.Equal(t, 2, res.Attempts)
	assert.True(t, res.UpdateIssued)
	assert.Equal(t, []time.Duration{DefaultDelay}, clock.sleeps)
	require.NotNil(t, res.ObservedStop)
	assert.Equal(t, 95.0, *res.ObservedStop)
	b.AssertExpectations(t)
}

func TestUpdateOnlyMissingLevel(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{
		found(position("R1", lvl(95), nil)),
		found(position("R1", lvl(95), lvl(110))),
	}}
	b.On("UpdatePosition", "DEAL-R1", models.LevelUpdate{TakeLevel: lvl(110)}).Return(nil).Once()

	res := newReconciler(b, &fakeClock{}).Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))

	assert.Equal(t, Verified, res.Outcome)
	assert.Nil(t, res.UpdatePayload.StopLevel)
	require.NotNil(t, res.UpdatePayload.TakeLevel)
	assert.Equal(t, 110.0, *res.UpdatePayload.TakeLevel)
	b.AssertExpectations(t)
}

func TestExistingDifferentLevelIsNotOverwritten(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{found(position("R1", lvl(94.5), nil))}}
	clock := &fakeClock{}

	res := newReconciler(b, clock).Reconcile(context.Background(), sess, "R1", lvl(95), nil)

	assert.Equal(t, NotConfirmed, res.Outcome)
	assert.Equal(t, DefaultMaxAttempts, res.Attempts)
	assert.Equal(t, DefaultMaxAttempts-1, clock.count())
	assert.False(t, res.UpdateIssued)
	require.NotNil(t, res.ObservedStop)
	assert.Equal(t, 94.5, *res.ObservedStop)
	b.AssertNotCalled(t, "UpdatePosition", mock.Anything, mock.Anything)
}

func TestAtMostOneUpdate(t *testing.T) {
	// брокер принимает PUT, но уровни так и не появляются
	b := &scriptedBroker{snapshots: []snapshot{found(position("R1", nil, nil))}}
	b.On("UpdatePosition", "DEAL-R1", mock.Anything).Return(nil)

	res := newReconciler(b, &fakeClock{}).Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))

	assert.Equal(t, NotConfirmed, res.Outcome)
	assert.Equal(t, DefaultMaxAttempts, res.Attempts)
	b.AssertNumberOfCalls(t, "UpdatePosition", 1)
}

func TestUpdateRejectedDoesNotAbort(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{
		found(position("R1", nil, nil)),
		found(position("R1", nil, nil)),
		found(position("R1", lvl(95), nil)),
	}}
	b.On("UpdatePosition", "DEAL-R1", models.LevelUpdate{StopLevel: lvl(95)}).Return(errBroker).Once()

	res := newReconciler(b, &fakeClock{}).Reconcile(context.Background(), sess, "R1", lvl(95), nil)

	assert.Equal(t, Verified, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.ErrorIs(t, res.UpdateErr, errBroker)
	b.AssertNumberOfCalls(t, "UpdatePosition", 1)
}

func TestUpdateIssuedOnFirstSightingAfterMisses(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{
		empty(),
		failing(),
		found(position("R1", nil, nil)),
		found(position("R1", lvl(95), nil)),
	}}
	b.On("UpdatePosition", "DEAL-R1", models.LevelUpdate{StopLevel: lvl(95)}).Return(nil).Once()

	res := newReconciler(b, &fakeClock{}).Reconcile(context.Background(), sess, "R1", lvl(95), nil)

	assert.Equal(t, Verified, res.Outcome)
	assert.Equal(t, 4, res.Attempts)
	b.AssertExpectations(t)
}

func TestPartiallyUpdated(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{
		found(position("R1", nil, nil)),
		found(position("R1", lvl(95), nil)),
	}}
	b.On("UpdatePosition", "DEAL-R1", mock.Anything).Return(nil).Once()

	res := newReconciler(b, &fakeClock{}).Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))

	assert.Equal(t, PartiallyUpdated, res.Outcome)
	assert.Equal(t, DefaultMaxAttempts, res.Attempts)
}

func TestIdempotentAcrossCalls(t *testing.T) {
	snap := found(position("R1", lvl(95), lvl(110)))
	r := newReconciler(&scriptedBroker{snapshots: []snapshot{snap}}, &fakeClock{})

	first := r.Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))
	second := r.Reconcile(context.Background(), sess, "R1", lvl(95), lvl(110))

	assert.Equal(t, first, second)
}

func TestToleranceAcceptsCloseLevels(t *testing.T) {
	b := &scriptedBroker{snapshots: []snapshot{found(position("R1", lvl(94.999), nil))}}
	r := New(b, NewPolicy(5, time.Second, 0.01), &fakeClock{}, nil)

	res := r.Reconcile(context.Background(), sess, "R1", lvl(95), nil)

	assert.Equal(t, Verified, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
}

func TestCancelledContextStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := &scriptedBroker{snapshots: []snapshot{found(position("R1", lvl(90), nil))}}
	clock := &fakeClock{cancelAfter: 2, cancel: cancel}

	res := newReconciler(b, clock).Reconcile(ctx, sess, "R1", lvl(95), nil)

	assert.Equal(t, NotConfirmed, res.Outcome)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, b.fetchCount())
}

func TestMissingLevels(t *testing.T) {
	cases := []struct {
		name       string
		stop, take *float64
		wantStop   *float64
		wantTake   *float64
	}{
		{"both missing", nil, nil, lvl(95), lvl(110)},
		{"stop present", lvl(90), nil, nil, lvl(110)},
		{"take present", nil, lvl(120), lvl(95), nil},
		{"both present", lvl(90), lvl(120), nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MissingLevels(position("R", tc.stop, tc.take), lvl(95), lvl(110))
			assert.Equal(t, tc.wantStop, got.StopLevel)
			assert.Equal(t, tc.wantTake, got.TakeLevel)
		})
	}

	got := MissingLevels(position("R", nil, nil), nil, lvl(110))
	assert.Nil(t, got.StopLevel)
}
