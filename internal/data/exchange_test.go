package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-backtest/internal/metrics"
	"signal-backtest/internal/model"
)

func binanceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/klines", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
			return
		}
		assert.Equal(t, "1h", q.Get("interval"))
		assert.Equal(t, "1000", q.Get("limit"))
		fmt.Fprint(w, `[
			[1700000000000,"100.10","101.00","99.50","100.90","12.5",1700003599999,"0",10,"0","0","0"],
			[1700003600000,"100.90","102.25","100.00","102.00","8",1700007199999,"0",8,"0","0","0"]
		]`)
	})
	mux.HandleFunc("/api/v3/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"symbol":"%s","price":"70123.45000000"}`, r.URL.Query().Get("symbol"))
	})
	mux.HandleFunc("/api/v3/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbols":[
			{"symbol":"ETHUSDT","status":"TRADING","baseAsset":"ETH","quoteAsset":"USDT"},
			{"symbol":"OLDBTC","status":"BREAK","baseAsset":"OLD","quoteAsset":"BTC"}
		]}`)
	})
	return httptest.NewServer(mux)
}

func TestBinanceFetchOHLCV(t *testing.T) {
	srv := binanceServer(t)
	defer srv.Close()
	m := metrics.New()

	b := NewBinance(Options{BaseURL: srv.URL, HTTPClient: srv.Client(), Metrics: m})
	series, err := b.FetchOHLCV(context.Background(), "BTC/USDT", "1h", 5000)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, model.Candle{
		Timestamp: 1700000000000,
		Open:      100.10,
		High:      101.00,
		Low:       99.50,
		Close:     100.90,
		Volume:    12.5,
	}, series[0])
	assert.Equal(t, 102.0, series[1].Close)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExchangeRequests.WithLabelValues("binance", "klines", "ok")))
}

func TestBinanceErrorResponse(t *testing.T) {
	srv := binanceServer(t)
	defer srv.Close()

	b := NewBinance(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := b.FetchOHLCV(context.Background(), "NOPE/USDT", "1h", 1000)
	require.Error(t, err)

	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, http.StatusBadRequest, exErr.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", exErr.Code)
	assert.Contains(t, exErr.Message, "Invalid symbol.")
	assert.Contains(t, exErr.Message, "-1121")
}

func TestBinanceLastPriceAndMarkets(t *testing.T) {
	srv := binanceServer(t)
	defer srv.Close()

	b := NewBinance(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	px, err := b.LastPrice(context.Background(), "btc/usdt")
	require.NoError(t, err)
	assert.Equal(t, 70123.45, px)

	markets, err := b.Markets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, Market{Symbol: "ETH/USDT", ID: "ETHUSDT", Base: "ETH", Quote: "USDT", Exchange: "binance"}, markets[0])
}

func TestRateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b := NewBinance(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := b.LastPrice(context.Background(), "BTC/USDT")

	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", exErr.Code)
	assert.Equal(t, "30", exErr.RetryAfter)
}

func bybitServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v5/market/kline", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("symbol") != "ETHUSDT" {
			fmt.Fprint(w, `{"retCode":10001,"retMsg":"Not supported symbols","result":{}}`)
			return
		}
		assert.Equal(t, "spot", q.Get("category"))
		assert.Equal(t, "240", q.Get("interval"))
		// newest first
		fmt.Fprint(w, `{"retCode":0,"retMsg":"OK","result":{"symbol":"ETHUSDT","category":"spot","list":[
			["1700014400000","2010","2020","2000","2015","3.5","7000"],
			["1700000000000","2000","2012","1990","2010","4","8000"]
		]}}`)
	})
	mux.HandleFunc("/v5/market/tickers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retCode":0,"retMsg":"OK","result":{"category":"spot","list":[{"symbol":"ETHUSDT","lastPrice":"2015.37"}]}}`)
	})
	mux.HandleFunc("/v5/market/instruments-info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retCode":0,"retMsg":"OK","result":{"category":"spot","list":[
			{"symbol":"ETHUSDT","baseCoin":"ETH","quoteCoin":"USDT","status":"Trading"},
			{"symbol":"XYZUSDC","baseCoin":"XYZ","quoteCoin":"USDC","status":"Closed"}
		]}}`)
	})
	return httptest.NewServer(mux)
}

func TestBybitFetchOHLCVOldestFirst(t *testing.T) {
	srv := bybitServer(t)
	defer srv.Close()

	b := NewBybit(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	series, err := b.FetchOHLCV(context.Background(), "ETH/USDT", "4h", 2)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(1700000000000), series[0].Timestamp)
	assert.Equal(t, int64(1700014400000), series[1].Timestamp)
	assert.Equal(t, 2010.0, series[0].Close)
	assert.Equal(t, 3.5, series[1].Volume)
}

func TestBybitRetCodeError(t *testing.T) {
	srv := bybitServer(t)
	defer srv.Close()

	b := NewBybit(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := b.FetchOHLCV(context.Background(), "FOO/USDT", "1h", 10)

	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, "EXCHANGE_ERROR", exErr.Code)
	assert.Contains(t, exErr.Error(), "Not supported symbols")
}

func TestBybitLastPriceAndMarkets(t *testing.T) {
	srv := bybitServer(t)
	defer srv.Close()

	b := NewBybit(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	px, err := b.LastPrice(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, 2015.37, px)

	markets, err := b.Markets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "ETH/USDT", markets[0].Symbol)
}

func TestInputValidation(t *testing.T) {
	b := NewBinance(Options{BaseURL: "http://127.0.0.1:1"})
	ctx := context.Background()

	_, err := b.FetchOHLCV(ctx, "BTC/USDT", "2h", 10)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
	_, err = b.FetchOHLCV(ctx, " ", "1h", 10)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
	_, err = b.LastPrice(ctx, "BTC USDT")
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestNewExchange(t *testing.T) {
	ex, err := NewExchange("Binance", Options{})
	require.NoError(t, err)
	assert.Equal(t, "binance", ex.Name())

	ex, err = NewExchange("bybit", Options{})
	require.NoError(t, err)
	assert.Equal(t, "bybit", ex.Name())

	_, err = NewExchange("kraken", Options{})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestNormalizeSymbolAndLimit(t *testing.T) {
	s, err := NormalizeSymbol("btc/usdt")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", s)

	s, err = NormalizeSymbol("ETH-USDC")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDC", s)

	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, MaxLimit, ClampLimit(2000))
}
