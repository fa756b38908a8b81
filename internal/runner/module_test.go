package runner

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"
	capital "daily_trader/internal/modules/capital_client/service"
	"daily_trader/internal/modules/config"
	"daily_trader/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestReconcilerFetchesOncePerAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/positions" {
			hits.Add(1)
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"errorCode":"error.internal"}`)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Capital.BaseURL = srv.URL
	cfg.Capital.Timeout = 2 * time.Second
	cfg.Capital.RetryCount = 2
	cfg.Reconcile.MaxAttempts = 5
	cfg.Reconcile.Delay = time.Millisecond

	client := capital.NewClient(cfg, zap.NewNop())
	rec := NewReconciler(cfg, client, zap.NewNop())

	res := rec.Reconcile(context.Background(), models.Session{CST: "c", SecurityToken: "s"},
		"REF-1", helper.Ptr(95.0), nil)

	assert.Equal(t, reconcile.Failed, res.Outcome)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, int32(5), hits.Load())
}
