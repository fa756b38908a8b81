package runner

import (
	"context"
	"errors"
	"testing"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"
	"daily_trader/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sess = models.Session{CST: "c", SecurityToken: "s"}

func TestOpenerOpensAndVerifies(t *testing.T) {
	b := &fakeBroker{markets: []models.Market{share("AAPL", models.MarketTradeable)}}
	j := &memJournal{}
	n := &nopNotifier{}
	cfg := testConfig()
	cfg.Open.AttachLevels = true

	rep, err := newTestOpener(cfg, b, j, n).Run(context.Background(), sess, "run-1", []models.Stock{
		{Ticker: "AAPL", Price: 100, SL: 97, TP: 106, Factor: helper.Ptr(2.5)},
	})
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)

	rec := rep.Records[0]
	assert.Equal(t, models.OpenStatusOpened, rec.Status)
	assert.Equal(t, string(reconcile.Verified), rec.Outcome)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, 2.5, rec.Size)
	assert.Equal(t, "DEAL-1", rec.DealID)

	require.Len(t, b.opened, 1)
	assert.Equal(t, helper.Ptr(97.0), b.opened[0].StopLevel)
	assert.Empty(t, b.updates)
	assert.Len(t, j.opens, 1)
	assert.Len(t, n.msgs, 1)
}

func TestOpenerWithoutAttachReconcilesLevels(t *testing.T) {
	b := &fakeBroker{markets: []models.Market{share("MSFT", models.MarketTradeable)}}
	cfg := testConfig()

	rep, err := newTestOpener(cfg, b, &memJournal{}, &nopNotifier{}).Run(context.Background(), sess, "run-2", []models.Stock{
		{Ticker: "MSFT", Price: 400, SL: 388, TP: 420},
	})
	require.NoError(t, err)

	require.Len(t, b.opened, 1)
	assert.Nil(t, b.opened[0].StopLevel)
	assert.Nil(t, b.opened[0].TakeLevel)
	assert.Equal(t, 1.0, b.opened[0].Size)

	require.Len(t, b.updates, 1)
	assert.Equal(t, models.LevelUpdate{StopLevel: helper.Ptr(388.0), TakeLevel: helper.Ptr(420.0)}, b.updates[0])
	assert.Equal(t, string(reconcile.Verified), rep.Records[0].Outcome)
	assert.Equal(t, 2, rep.Records[0].Attempts)
	assert.True(t, rep.Records[0].UpdateIssued)
}

func TestOpenerCapsAndSkips(t *testing.T) {
	b := &fakeBroker{markets: []models.Market{
		share("A", models.MarketTradeable),
		share("B", "CLOSED"),
		share("C", models.MarketTradeable),
		share("D", models.MarketTradeable),
	}}
	cfg := testConfig()
	cfg.Open.MaxPositions = 3

	rep, err := newTestOpener(cfg, b, &memJournal{}, &nopNotifier{}).Run(context.Background(), sess, "run-3", []models.Stock{
		{Ticker: "MISSING"},
		{Ticker: "A", SL: 1},
		{Ticker: "B", SL: 1},
		{Ticker: "C", SL: 1},
		{Ticker: "D", SL: 1},
	})
	require.NoError(t, err)

	// MISSING не расходует лимит, B расходует
	assert.Len(t, b.opened, 2)
	assert.Equal(t, 2, rep.Count(models.OpenStatusOpened))
	assert.Equal(t, 2, rep.Count(models.OpenStatusSkipped))
	for _, rec := range rep.Records {
		assert.NotEqual(t, "D", rec.Ticker)
	}
}

func TestOpenerOrderFailureRecorded(t *testing.T) {
	b := &fakeBroker{
		markets: []models.Market{share("AAPL", models.MarketTradeable)},
		openErr: map[string]error{"AAPL": errors.New("insufficient funds")},
	}

	rep, err := newTestOpener(testConfig(), b, &memJournal{}, &nopNotifier{}).Run(context.Background(), sess, "run-4", []models.Stock{
		{Ticker: "AAPL", SL: 90},
	})
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)
	assert.Equal(t, models.OpenStatusFailed, rep.Records[0].Status)
	assert.Contains(t, rep.Records[0].Reason, "insufficient funds")
}

func TestOpenerRejectedDealSkipsReconcile(t *testing.T) {
	b := &fakeBroker{
		markets:  []models.Market{share("AAPL", models.MarketTradeable)},
		rejected: map[string]bool{"AAPL": true},
	}

	rep, err := newTestOpener(testConfig(), b, &memJournal{}, &nopNotifier{}).Run(context.Background(), sess, "run-5", []models.Stock{
		{Ticker: "AAPL", SL: 90},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OpenStatusFailed, rep.Records[0].Status)
	assert.Equal(t, string(reconcile.Failed), rep.Records[0].Outcome)
	assert.Empty(t, b.updates)
}

func TestOpenerDroppedLevelsFilledByUpdate(t *testing.T) {
	b := &fakeBroker{markets: []models.Market{share("AAPL", models.MarketTradeable)}, dropLevels: true}
	n := &nopNotifier{}
	cfg := testConfig()
	cfg.Open.AttachLevels = true

	// брокер проглотил уровни из ордера
	rep, err := newTestOpener(cfg, b, &memJournal{}, n).Run(context.Background(), sess, "run-6", []models.Stock{
		{Ticker: "AAPL", SL: 90, TP: 120},
	})
	require.NoError(t, err)
	assert.Equal(t, string(reconcile.Verified), rep.Records[0].Outcome)
	assert.Equal(t, 2, rep.Records[0].Attempts)
	assert.Len(t, b.updates, 1)
	assert.Len(t, n.msgs, 1)
}
