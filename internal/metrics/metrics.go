package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for backtests, exchange calls and
// alerts. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BacktestsTotal   *prometheus.CounterVec // labels: strategy, status
	BacktestDuration prometheus.Histogram
	ExchangeRequests *prometheus.CounterVec // labels: exchange, endpoint, status
	AlertsTotal      *prometheus.CounterVec // labels: symbol, state
	CacheLookups     *prometheus.CounterVec // labels: result
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BacktestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backtests_total",
			Help: "Backtests run, by strategy kind and outcome",
		}, []string{"strategy", "status"}),
		BacktestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backtest_duration_seconds",
			Help:    "Wall time of a single strategy evaluation plus simulation",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		ExchangeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exchange_requests_total",
			Help: "REST requests sent to exchanges",
		}, []string{"exchange", "endpoint", "status"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_total",
			Help: "Price alert state transitions",
		}, []string{"symbol", "state"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candle_cache_lookups_total",
			Help: "Candle cache lookups by result (hit, miss)",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.BacktestsTotal,
		m.BacktestDuration,
		m.ExchangeRequests,
		m.AlertsTotal,
		m.CacheLookups,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveBacktest(strategy string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.BacktestsTotal.WithLabelValues(strategy, status(err)).Inc()
	m.BacktestDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveExchange(exchange, endpoint string, err error) {
	if m == nil {
		return
	}
	m.ExchangeRequests.WithLabelValues(exchange, endpoint, status(err)).Inc()
}

func (m *Metrics) ObserveAlert(symbol, state string) {
	if m == nil {
		return
	}
	m.AlertsTotal.WithLabelValues(symbol, state).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
