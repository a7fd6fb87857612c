package data

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"signal-backtest/internal/metrics"
	"signal-backtest/internal/model"
)

const (
	DefaultLimit = 500
	MaxLimit     = 1000
)

// Timeframes lists the supported bar sizes in ascending order.
var Timeframes = []string{"1m", "3m", "5m", "15m", "30m", "1h", "4h", "1d"}

// Exchange is a read-only market-data source.
type Exchange interface {
	Name() string
	// FetchOHLCV returns up to limit of the most recent bars, oldest first.
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (model.Series, error)
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// MarketLister is implemented by exchanges that can enumerate spot symbols.
type MarketLister interface {
	Markets(ctx context.Context) ([]Market, error)
}

// ExchangeError is a non-success response from an exchange API.
type ExchangeError struct {
	Exchange   string
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // for rate limit errors
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Exchange, e.Message)
}

// Options configures an exchange client. Zero values pick sensible defaults.
type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Logger            *zerolog.Logger
	Metrics           *metrics.Metrics
}

// NewExchange returns the client for a supported exchange name.
func NewExchange(name string, opts Options) (Exchange, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binance":
		return NewBinance(opts), nil
	case "bybit":
		return NewBybit(opts), nil
	}
	return nil, fmt.Errorf("%w: unsupported exchange %q (want binance or bybit)", model.ErrInvalidParameter, name)
}

// Exchanges lists the names accepted by NewExchange.
func Exchanges() []string { return []string{"binance", "bybit"} }

// NormalizeSymbol turns "BTC/USDT" or "btc-usdt" into the exchange form
// "BTCUSDT".
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.NewReplacer("/", "", "-", "", "_", "").Replace(s)
	if s == "" {
		return "", fmt.Errorf("%w: symbol is required", model.ErrInvalidParameter)
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("%w: invalid symbol %q", model.ErrInvalidParameter, symbol)
		}
	}
	return s, nil
}

func ValidateTimeframe(tf string) error {
	for _, t := range Timeframes {
		if t == tf {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported timeframe %q (want one of %s)", model.ErrInvalidParameter, tf, strings.Join(Timeframes, ", "))
}

// ClampLimit bounds a requested bar count to what the exchanges serve in one
// call. Zero or negative selects DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func (o Options) logger(component string) zerolog.Logger {
	base := zerolog.Nop()
	if o.Logger != nil {
		base = *o.Logger
	}
	return base.With().Str("component", component).Logger()
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (o Options) rps() float64 {
	if o.RequestsPerSecond > 0 {
		return o.RequestsPerSecond
	}
	return 10
}
