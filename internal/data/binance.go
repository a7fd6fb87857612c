package data

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"

	"signal-backtest/internal/model"
)

const binanceBaseURL = "https://api.binance.com"

// Binance reads public spot market data from the Binance REST API.
type Binance struct {
	rest *restClient
}

func NewBinance(opts Options) *Binance {
	c := newRESTClient("binance", binanceBaseURL, opts)
	c.errorDetail = func(body []byte) (string, string) {
		var e struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if sonic.Unmarshal(body, &e) != nil || e.Msg == "" {
			return "", ""
		}
		return strconv.Itoa(e.Code), e.Msg
	}
	return &Binance{rest: c}
}

func (b *Binance) Name() string { return "binance" }

// FetchOHLCV calls /api/v3/klines. Each row is
// [openTime, open, high, low, close, volume, closeTime, ...] with prices as
// strings.
func (b *Binance) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (model.Series, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ValidateTimeframe(timeframe); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", sym)
	q.Set("interval", timeframe)
	q.Set("limit", strconv.Itoa(ClampLimit(limit)))

	var rows [][]any
	if err := b.rest.get(ctx, "klines", "/api/v3/klines", q, &rows); err != nil {
		return nil, err
	}

	out := make(model.Series, 0, len(rows))
	for i, row := range rows {
		c, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("binance klines row %d: %w", i, err)
		}
		out = append(out, c)
	}
	b.rest.log.Info().
		Str("symbol", sym).
		Str("timeframe", timeframe).
		Int("bars", len(out)).
		Msg("fetched candles")
	return out, nil
}

// LastPrice calls /api/v3/ticker/price.
func (b *Binance) LastPrice(ctx context.Context, symbol string) (float64, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return 0, err
	}
	q := url.Values{}
	q.Set("symbol", sym)

	var ticker struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := b.rest.get(ctx, "ticker", "/api/v3/ticker/price", q, &ticker); err != nil {
		return 0, err
	}
	return parseDecimal(ticker.Price)
}

// Markets calls /api/v3/exchangeInfo and keeps symbols that are trading.
func (b *Binance) Markets(ctx context.Context) ([]Market, error) {
	var info struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
		} `json:"symbols"`
	}
	if err := b.rest.get(ctx, "exchange_info", "/api/v3/exchangeInfo", url.Values{}, &info); err != nil {
		return nil, err
	}

	out := make([]Market, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		out = append(out, Market{
			Symbol:   s.BaseAsset + "/" + s.QuoteAsset,
			ID:       s.Symbol,
			Base:     s.BaseAsset,
			Quote:    s.QuoteAsset,
			Exchange: "binance",
		})
	}
	return out, nil
}
