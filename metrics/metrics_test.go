package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Tick("accepted")
		m.Decision()
		m.Cross("cross-up")
		m.TradeAction("open", "ok")
		m.PredictionError()
		m.SetPositionOpen(true)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Tick("accepted")
	m.Tick("accepted")
	m.Tick("same_day")
	m.TradeAction("open", "ok")
	m.PredictionError()
	m.SetPositionOpen(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TicksTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicksTotal.WithLabelValues("same_day")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TradeActionsTotal.WithLabelValues("open", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionErrorsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PositionOpen))
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Decision()

	srv := httptest.NewServer(Router(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "trader_decisions_total 1"))
}
