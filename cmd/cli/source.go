package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
)

// sourceFlags select where candles come from. They override the YAML config.
var sourceFlags = []cli.Flag{
	&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to YAML config"},
	&cli.StringFlag{Name: "exchange", Usage: "binance or bybit"},
	&cli.StringFlag{Name: "symbol", Usage: "market symbol, e.g. BTC/USDT"},
	&cli.StringFlag{Name: "timeframe", Aliases: []string{"tf"}, Usage: "candle timeframe (1m,3m,5m,15m,30m,1h,4h,1d)"},
	&cli.IntFlag{Name: "limit", Usage: "number of candles to fetch (max 1000)"},
	&cli.StringFlag{Name: "data", Usage: "read candles from a .csv or .json file instead of an exchange"},
	&cli.Float64Flag{Name: "fee-bps", Usage: "fee in basis points per unit of position change"},
	&cli.IntFlag{Name: "n", Usage: "keep only the most recent N candles (0=all)"},
}

// loadConfig reads --config (if any) and overlays the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadUnchecked(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("exchange") {
		cfg.Exchange = c.String("exchange")
	}
	if c.IsSet("symbol") {
		cfg.Symbol = c.String("symbol")
	}
	if c.IsSet("timeframe") {
		cfg.Timeframe = c.String("timeframe")
	}
	if c.IsSet("limit") {
		cfg.Limit = c.Int("limit")
	}
	if c.IsSet("data") {
		cfg.DataFile = c.String("data")
	}
	if c.IsSet("fee-bps") {
		fee := c.Float64("fee-bps")
		cfg.FeeBps = &fee
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// parseParams turns repeated key=value flags into a strategy parameter bag.
func parseParams(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", model.ErrInvalidParameter, pair)
		}
		value = strings.TrimSpace(value)
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[key] = f
		} else {
			out[key] = value
		}
	}
	return out, nil
}

// openExchange builds the configured client, wrapped in a Redis cache when
// cache.redis_addr is set.
func openExchange(ctx context.Context, cfg *config.Config, log zerolog.Logger) (data.Exchange, func(), error) {
	ex, err := data.NewExchange(cfg.Exchange, data.Options{Logger: &log})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Cache.RedisAddr == "" {
		return ex, func() {}, nil
	}
	client, err := data.DialRedis(ctx, cfg.Cache.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, fetching without cache")
		return ex, func() {}, nil
	}
	cached := data.NewCachedExchange(ex, data.NewRedisCache(client, cfg.Cache.TTL), log, nil)
	return cached, func() { _ = client.Close() }, nil
}

// loadSeries reads candles from cfg.DataFile or the configured exchange.
func loadSeries(ctx context.Context, cfg *config.Config, log zerolog.Logger, lastN int) (model.Series, error) {
	var (
		series model.Series
		err    error
	)
	if cfg.DataFile != "" {
		series, err = data.LoadCandles(cfg.DataFile)
	} else {
		var (
			ex      data.Exchange
			release func()
		)
		ex, release, err = openExchange(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		defer release()
		series, err = ex.FetchOHLCV(ctx, cfg.Symbol, cfg.Timeframe, cfg.Limit)
	}
	if err != nil {
		return nil, err
	}
	return series.Tail(lastN), nil
}

func describeSource(cfg *config.Config) string {
	if cfg.DataFile != "" {
		return cfg.DataFile
	}
	return fmt.Sprintf("%s %s %s", cfg.Exchange, cfg.Symbol, cfg.Timeframe)
}
