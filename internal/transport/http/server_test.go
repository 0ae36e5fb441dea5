package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/metrics"
	"quotebot/internal/pkg/circuit"
	"quotebot/internal/trader"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Symbol: "BTCUSDT",
		State:  trader.NewEngineState(time.Unix(1000, 0)),
		BreakerState: func() circuit.State {
			return circuit.StateClosed
		},
		Stats: func() GatewayStats {
			return GatewayStats{Requests: 42, Errors: 1, LastError: "timeout"}
		},
		Metrics: metrics.New(),
	})
	require.NoError(t, err)
	return srv
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.router.ServeHTTP(w, req)
	return w
}

func TestServerRequiresState(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	w := get(newTestServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	w := get(newTestServer(t), "/api/status")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "BTCUSDT", body["symbol"])
	assert.Equal(t, "CLOSED", body["breaker"])

	gw, ok := body["gateway"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 42.0, gw["requests"])
	assert.Equal(t, "timeout", gw["last_error"])
}

func TestMetricsEndpoint(t *testing.T) {
	w := get(newTestServer(t), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTradesRouteAbsentWithoutStore(t *testing.T) {
	w := get(newTestServer(t), "/api/trades")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDefaultAddr(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, ":9985", srv.Addr())
}
