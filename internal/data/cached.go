package data

import (
	"context"

	"github.com/rs/zerolog"

	"signal-backtest/internal/metrics"
	"signal-backtest/internal/model"
)

// CachedExchange serves FetchOHLCV from a Cache when possible. Last prices
// are always fetched live. Cache failures are logged and treated as misses.
type CachedExchange struct {
	Exchange
	cache   Cache
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewCachedExchange(ex Exchange, cache Cache, log zerolog.Logger, m *metrics.Metrics) *CachedExchange {
	return &CachedExchange{
		Exchange: ex,
		cache:    cache,
		log:      log.With().Str("component", "candle_cache").Str("exchange", ex.Name()).Logger(),
		metrics:  m,
	}
}

func (c *CachedExchange) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (model.Series, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	key := CacheKey(c.Name(), sym, timeframe, limit)

	series, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache get failed")
	}
	c.metrics.ObserveCache(ok)
	if ok {
		c.log.Debug().
			Str("symbol", sym).
			Str("timeframe", timeframe).
			Int("bars", len(series)).
			Msg("cache hit")
		return series, nil
	}

	series, err = c.Exchange.FetchOHLCV(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, series); err != nil {
		c.log.Warn().Err(err).Msg("cache set failed")
	}
	return series, nil
}
