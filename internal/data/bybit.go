package data

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"

	"signal-backtest/internal/model"
)

const bybitBaseURL = "https://api.bybit.com"

var bybitIntervals = map[string]string{
	"1m":  "1",
	"3m":  "3",
	"5m":  "5",
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"4h":  "240",
	"1d":  "D",
}

// Bybit reads public spot market data from the Bybit v5 REST API.
type Bybit struct {
	rest *restClient
}

// bybitResponse is the v5 envelope. Errors usually arrive as HTTP 200 with a
// non-zero retCode.
type bybitResponse[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
}

func NewBybit(opts Options) *Bybit {
	c := newRESTClient("bybit", bybitBaseURL, opts)
	c.errorDetail = func(body []byte) (string, string) {
		var e bybitResponse[struct{}]
		if sonic.Unmarshal(body, &e) != nil || e.RetMsg == "" {
			return "", ""
		}
		return strconv.Itoa(e.RetCode), e.RetMsg
	}
	return &Bybit{rest: c}
}

func (b *Bybit) Name() string { return "bybit" }

func (b *Bybit) retError(endpoint string, code int, msg string) error {
	b.rest.log.Warn().Str("endpoint", endpoint).Int("ret_code", code).Msg(msg)
	return &ExchangeError{
		Exchange:   "bybit",
		StatusCode: 200,
		Code:       "EXCHANGE_ERROR",
		Message:    fmt.Sprintf("%s (retCode %d)", msg, code),
	}
}

// FetchOHLCV calls /v5/market/kline. Bybit lists bars newest first; the result
// is reversed to oldest first.
func (b *Bybit) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (model.Series, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ValidateTimeframe(timeframe); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("category", "spot")
	q.Set("symbol", sym)
	q.Set("interval", bybitIntervals[timeframe])
	q.Set("limit", strconv.Itoa(ClampLimit(limit)))

	var resp bybitResponse[struct {
		Symbol string  `json:"symbol"`
		List   [][]any `json:"list"`
	}]
	if err := b.rest.get(ctx, "kline", "/v5/market/kline", q, &resp); err != nil {
		return nil, err
	}
	if resp.RetCode != 0 {
		return nil, b.retError("kline", resp.RetCode, resp.RetMsg)
	}

	rows := resp.Result.List
	out := make(model.Series, len(rows))
	for i, row := range rows {
		c, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("bybit kline row %d: %w", i, err)
		}
		out[len(rows)-1-i] = c
	}
	b.rest.log.Info().
		Str("symbol", sym).
		Str("timeframe", timeframe).
		Int("bars", len(out)).
		Msg("fetched candles")
	return out, nil
}

// LastPrice calls /v5/market/tickers.
func (b *Bybit) LastPrice(ctx context.Context, symbol string) (float64, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return 0, err
	}
	q := url.Values{}
	q.Set("category", "spot")
	q.Set("symbol", sym)

	var resp bybitResponse[struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}]
	if err := b.rest.get(ctx, "tickers", "/v5/market/tickers", q, &resp); err != nil {
		return 0, err
	}
	if resp.RetCode != 0 {
		return 0, b.retError("tickers", resp.RetCode, resp.RetMsg)
	}
	if len(resp.Result.List) == 0 {
		return 0, &ExchangeError{Exchange: "bybit", StatusCode: 200, Code: "INVALID_REQUEST", Message: "no ticker for " + sym}
	}
	return parseDecimal(resp.Result.List[0].LastPrice)
}

// Markets calls /v5/market/instruments-info for the spot category.
func (b *Bybit) Markets(ctx context.Context) ([]Market, error) {
	q := url.Values{}
	q.Set("category", "spot")

	var resp bybitResponse[struct {
		List []struct {
			Symbol    string `json:"symbol"`
			BaseCoin  string `json:"baseCoin"`
			QuoteCoin string `json:"quoteCoin"`
			Status    string `json:"status"`
		} `json:"list"`
	}]
	if err := b.rest.get(ctx, "instruments", "/v5/market/instruments-info", q, &resp); err != nil {
		return nil, err
	}
	if resp.RetCode != 0 {
		return nil, b.retError("instruments", resp.RetCode, resp.RetMsg)
	}

	out := make([]Market, 0, len(resp.Result.List))
	for _, s := range resp.Result.List {
		if s.Status != "Trading" {
			continue
		}
		out = append(out, Market{
			Symbol:   s.BaseCoin + "/" + s.QuoteCoin,
			ID:       s.Symbol,
			Base:     s.BaseCoin,
			Quote:    s.QuoteCoin,
			Exchange: "bybit",
		})
	}
	return out, nil
}
