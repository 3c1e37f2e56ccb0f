// Package metrics exposes agent counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the agent counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	TicksTotal            *prometheus.CounterVec // labels: outcome
	DecisionsTotal        prometheus.Counter
	CrossEventsTotal      *prometheus.CounterVec // labels: event
	TradeActionsTotal     *prometheus.CounterVec // labels: action, result
	PredictionErrorsTotal prometheus.Counter
	PositionOpen          prometheus.Gauge
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trader_ticks_total",
			Help: "Ticks seen by the agent, by outcome",
		}, []string{"outcome"}),
		DecisionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_decisions_total",
			Help: "Daily decisions evaluated",
		}),
		CrossEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trader_cross_events_total",
			Help: "Moving average crossover events",
		}, []string{"event"}),
		TradeActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trader_trade_actions_total",
			Help: "Broker open and close attempts, by result",
		}, []string{"action", "result"}),
		PredictionErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_prediction_errors_total",
			Help: "Decisions left indeterminate because the prediction service failed",
		}),
		PositionOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trader_position_open",
			Help: "1 while a position is open",
		}),
	}

	reg.MustRegister(
		m.TicksTotal,
		m.DecisionsTotal,
		m.CrossEventsTotal,
		m.TradeActionsTotal,
		m.PredictionErrorsTotal,
		m.PositionOpen,
	)
	return m
}

func (m *Metrics) Tick(outcome string) {
	if m == nil {
		return
	}
	m.TicksTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Decision() {
	if m == nil {
		return
	}
	m.DecisionsTotal.Inc()
}

func (m *Metrics) Cross(event string) {
	if m == nil {
		return
	}
	m.CrossEventsTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) TradeAction(action, result string) {
	if m == nil {
		return
	}
	m.TradeActionsTotal.WithLabelValues(action, result).Inc()
}

func (m *Metrics) PredictionError() {
	if m == nil {
		return
	}
	m.PredictionErrorsTotal.Inc()
}

func (m *Metrics) SetPositionOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.PositionOpen.Set(1)
	} else {
		m.PositionOpen.Set(0)
	}
}

// Router serves /metrics from g and a /healthz probe.
func Router(g prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return r
}

// Serve runs h on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
