package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBacktest(t *testing.T) {
	m := New()
	m.ObserveBacktest("rsi2", time.Now(), nil)
	m.ObserveBacktest("rsi2", time.Now(), errors.New("boom"))
	m.ObserveBacktest("breakout", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BacktestsTotal.WithLabelValues("rsi2", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BacktestsTotal.WithLabelValues("rsi2", "error")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.BacktestsTotal))

	mfs, err := m.Registry().Gather()
	require.NoError(t, err)
	var samples uint64
	for _, mf := range mfs {
		if mf.GetName() == "backtest_duration_seconds" {
			samples = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(3), samples)
}

func TestObserveAlertAndExchange(t *testing.T) {
	m := New()
	m.ObserveAlert("BTC/USDT", "high")
	m.ObserveAlert("BTC/USDT", "high")
	m.ObserveExchange("binance", "klines", nil)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlertsTotal.WithLabelValues("BTC/USDT", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExchangeRequests.WithLabelValues("binance", "klines", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveAlert("ETH/USDT", "low")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `alerts_total{state="low",symbol="ETH/USDT"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveBacktest("x", time.Now(), nil)
	m.ObserveAlert("x", "mid")
	m.ObserveExchange("x", "y", nil)
	m.ObserveCache(true)
	assert.Nil(t, m.Registry())
}
