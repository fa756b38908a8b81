package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"daily_trader/internal/modules/health/service"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMuxEndpoints(t *testing.T) {
	state := service.NewState()
	metrics := service.NewMetrics()
	srv := httptest.NewServer(NewMux(state, metrics))
	defer srv.Close()

	code, _ := get(t, srv, "/livez")
	assert.Equal(t, http.StatusOK, code)

	code, _ = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	state.SetReady(true)
	state.SetWSConnected(true)
	state.TouchTick(time.Unix(1760400000, 0))
	metrics.Quotes.WithLabelValues("AAPL").Inc()

	code, _ = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	code, body := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	var h map[string]any
	require.NoError(t, sonic.UnmarshalString(body, &h))
	assert.Equal(t, true, h["wsConnected"])
	assert.EqualValues(t, 1760400000, h["lastTickUnix"])
	assert.EqualValues(t, 1, h["quotes"])

	code, body = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `trader_quotes_total{epic="AAPL"} 1`)
}
