package service

import (
	"context"

	"daily_trader/internal/models"
	stream "daily_trader/internal/modules/capital_stream/service"
	health "daily_trader/internal/modules/health/service"
	notify "daily_trader/internal/modules/notifier/service"

	"go.uber.org/zap"
)

// Watcher котировки по epics открытых позиций в health и метрики.
type Watcher struct {
	list    *Watchlist
	warm    *Warmuper
	stream  *stream.Client
	state   *health.State
	metrics *health.Metrics
	n       notify.Notifier
	log     *zap.Logger
}

func NewWatcher(
	list *Watchlist,
	warm *Warmuper,
	st *stream.Client,
	state *health.State,
	metrics *health.Metrics,
	n notify.Notifier,
	log *zap.Logger,
) *Watcher {
	return &Watcher{list: list, warm: warm, stream: st, state: state, metrics: metrics, n: n, log: log.Named("watch")}
}

// Run блокируется до отмены ctx.
func (w *Watcher) Run(ctx context.Context, sess models.Session) error {
	epics, positions, err := w.list.Epics(ctx, sess)
	if err != nil {
		return err
	}
	w.metrics.OpenPositions.Set(float64(positions))
	if len(epics) == 0 {
		w.log.Info("no open positions, nothing to watch")
		w.state.SetReady(true)
		<-ctx.Done()
		return nil
	}

	if err := w.warm.Warmup(ctx, sess, epics); err != nil {
		w.log.Warn("warmup", zap.Error(err))
	}

	w.stream.OnConnChange(func(connected bool) {
		w.state.SetWSConnected(connected)
		if connected {
			w.metrics.StreamUp.Set(1)
		} else {
			w.metrics.StreamUp.Set(0)
		}
	})

	quotes := w.stream.StreamQuotes(ctx, sess, epics)
	w.state.SetReady(true)
	w.n.SendF(ctx, "👀 watching %d epics of %d open positions", len(epics), positions)

	for q := range quotes {
		w.OnQuote(q)
	}
	w.log.Info("watch stopped", zap.Int64("quotes", w.state.Quotes()))
	return nil
}

func (w *Watcher) OnQuote(q models.Quote) {
	w.state.TouchTick(q.Time)
	w.metrics.Quotes.WithLabelValues(q.Epic).Inc()
	w.metrics.LastPrice.WithLabelValues(q.Epic).Set(q.Bid)
	w.log.Debug("quote",
		zap.String("epic", q.Epic),
		zap.Float64("bid", q.Bid),
		zap.Float64("ofr", q.Ofr),
		zap.Float64("spread", q.Ofr-q.Bid),
	)
}
