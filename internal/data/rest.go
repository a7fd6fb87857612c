package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"signal-backtest/internal/metrics"
)

const maxBodyBytes = 8 << 20

// restClient is the shared GET plumbing for exchange clients: rate limiting,
// status handling, metrics and JSON decoding.
type restClient struct {
	exchange string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	log      zerolog.Logger
	metrics  *metrics.Metrics

	// errorDetail extracts the exchange's own code and message from an error
	// body. It may return empty strings.
	errorDetail func(body []byte) (code, msg string)
}

func newRESTClient(exchange, defaultBaseURL string, opts Options) *restClient {
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &restClient{
		exchange: exchange,
		baseURL:  base,
		http:     opts.httpClient(),
		limiter:  rate.NewLimiter(rate.Limit(opts.rps()), 1),
		log:      opts.logger(exchange),
		metrics:  opts.Metrics,
	}
}

// get issues GET baseURL+path?query and decodes a 200 response into out.
// endpoint labels logs and metrics.
func (c *restClient) get(ctx context.Context, endpoint, path string, query url.Values, out any) (err error) {
	defer func() { c.metrics.ObserveExchange(c.exchange, endpoint, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("endpoint", endpoint).Str("url", u.String()).Msg("request")
	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.log.Warn().Err(err).Str("endpoint", endpoint).Dur("duration", duration).Msg("request failed")
		return fmt.Errorf("%s %s: %w", c.exchange, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", c.exchange, endpoint, err)
	}
	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("response")

	if resp.StatusCode != http.StatusOK {
		exErr := c.statusError(resp, body)
		c.log.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("code", exErr.Code).
			Msg(exErr.Message)
		return exErr
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", c.exchange, endpoint, err)
	}
	return nil
}

func (c *restClient) statusError(resp *http.Response, body []byte) *ExchangeError {
	e := &ExchangeError{Exchange: c.exchange, StatusCode: resp.StatusCode}
	var code, detail string
	if c.errorDetail != nil {
		code, detail = c.errorDetail(body)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusTeapot:
		e.RetryAfter = resp.Header.Get("Retry-After")
		e.Code = "RATE_LIMIT_EXCEEDED"
		e.Message = fmt.Sprintf("rate limit exceeded, retry after: %s", e.RetryAfter)
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Code = "UNAUTHORIZED"
		e.Message = "request rejected by exchange"
	case http.StatusBadRequest, http.StatusNotFound:
		e.Code = "INVALID_REQUEST"
		e.Message = "invalid request"
	default:
		e.Code = "API_ERROR"
		e.Message = fmt.Sprintf("API returned status %d", resp.StatusCode)
	}
	if detail != "" {
		e.Message += ": " + detail
	}
	if code != "" {
		e.Message += " (code " + code + ")"
	}
	return e
}
