package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-backtest/internal/model"
	"signal-backtest/internal/strategy"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "config.yaml", "strategy:\n  name: rsi2\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "binance", c.Exchange)
	assert.Equal(t, "BTC/USDT", c.Symbol)
	assert.Equal(t, "1h", c.Timeframe)
	assert.Equal(t, 500, c.Limit)
	assert.Equal(t, 5.0, c.Fee())
	assert.Equal(t, 5*time.Second, c.Alert.Interval)
}

func TestLoadExplicitZeroFee(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "config.yaml", "fee_bps: 0\nstrategy:\n  name: rsi2\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Fee())
}

func TestLoadStrategyFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "strategies/bb.yaml", "strategy:\n  name: bollinger\n  params:\n    period: 20\n    std_multiplier: 2\n")
	path := write(t, dir, "config.yaml", `
exchange: bybit
symbol: ETH/USDT
timeframe: 4h
strategy_file: strategies/bb.yaml
strategy:
  params:
    std_multiplier: 1.5
alert:
  upper: 4000
  interval: 30s
telegram:
  token: abc
  chat_id: 12345
cache:
  redis_addr: localhost:6379
  ttl: 10m
`)
	c, err := Load(path)
	require.NoError(t, err)

	s, err := c.Strategy.Build()
	require.NoError(t, err)
	assert.Equal(t, strategy.Bollinger{Period: 20, StdMultiplier: 1.5}, s)

	assert.Equal(t, "bybit", c.Exchange)
	assert.Equal(t, 30*time.Second, c.Alert.Interval)
	require.NotNil(t, c.Alert.Upper)
	assert.Equal(t, 4000.0, *c.Alert.Upper)
	assert.Nil(t, c.Alert.Lower)
	assert.Equal(t, int64(12345), c.Telegram.ChatID)
	assert.Equal(t, 10*time.Minute, c.Cache.TTL)
	assert.NoError(t, c.ValidateAlert())
}

func TestValidateErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(write(t, dir, "a.yaml", "symbol: BTC/USDT\n"))
	assert.ErrorContains(t, err, "strategy.name is required")

	_, err = Load(write(t, dir, "b.yaml", "strategy:\n  name: macd\n"))
	assert.ErrorIs(t, err, model.ErrInvalidStrategy)

	_, err = Load(write(t, dir, "c.yaml", "strategy:\n  name: breakout\n"))
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Load(write(t, dir, "d.yaml", "fee_bps: -1\nstrategy:\n  name: rsi2\n"))
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Load(write(t, dir, "e.yaml", "timeframe: 2h\nstrategy:\n  name: rsi2\n"))
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Load(write(t, dir, "f.yaml", "exchange: kraken\nstrategy:\n  name: rsi2\n"))
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	// an offline data file skips exchange checks
	_, err = Load(write(t, dir, "g.yaml", "exchange: kraken\ndata_file: btc.csv\nstrategy:\n  name: rsi2\n"))
	assert.NoError(t, err)
}

func TestLoadMissingStrategyFile(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadUnchecked(write(t, dir, "config.yaml", "strategy_file: nope.yaml\n"))
	assert.Error(t, err)
}

func TestMergeStrategy(t *testing.T) {
	base := StrategyConfig{Name: "ema_crossover", Params: map[string]any{"fast_span": 9, "slow_span": 21}}

	got := MergeStrategy(base, StrategyConfig{Params: map[string]any{"fast_span": 5}})
	assert.Equal(t, StrategyConfig{Name: "ema_crossover", Params: map[string]any{"fast_span": 5, "slow_span": 21}}, got)
	assert.Equal(t, 9, base.Params["fast_span"], "base is not modified")

	other := StrategyConfig{Name: "rsi2"}
	assert.Equal(t, other, MergeStrategy(base, other))
}

func TestExampleConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "examples", "config.yaml"))
	require.NoError(t, err)
	s, err := c.Strategy.Build()
	require.NoError(t, err)
	assert.Equal(t, strategy.EMACrossover{FastSpan: 9, SlowSpan: 21}, s)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("API_ENV", "production")

	s, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, "9090", s.Port)
	assert.Equal(t, time.Minute, s.CacheTTL)
	assert.False(t, s.MetricsEnabled)
	assert.True(t, s.Production())
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, 10.0, s.ExchangeRPS)
}

func TestLoadServerFile(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "server.yaml", "api_port: \"7000\"\nlog_level: debug\n")
	s, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", s.Port)
	assert.Equal(t, "debug", s.LogLevel)
}
