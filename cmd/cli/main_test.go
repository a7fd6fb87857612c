package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-backtest/internal/model"
)

func writeCandles(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("ts,open,high,low,close,volume\n")
	for i := 0; i < n; i++ {
		c := 100 + float64(i%9)*2 - float64(i%4)
		fmt.Fprintf(&b, "%d,%g,%g,%g,%g,1\n", 1_700_000_000_000+i*60_000, c, c+1, c-1, c)
	}
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	require.NoError(t, sc.Err())
	return n
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"fast_span=9", " slow_span = 21 ", "note=x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"fast_span": 9.0, "slow_span": 21.0, "note": "x"}, params)

	_, err = parseParams([]string{"lookback"})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
	_, err = parseParams([]string{"=3"})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestDefaultParams(t *testing.T) {
	assert.Equal(t, map[string]any{"fast_span": 9.0, "slow_span": 21.0}, defaultParams("EMA Crossover"))
	assert.Empty(t, defaultParams("rsi2"))
	assert.Nil(t, defaultParams("macd"))
}

func TestBacktestCommandFromFile(t *testing.T) {
	candles := writeCandles(t, 40)
	out := filepath.Join(t.TempDir(), "nested", "ledger.csv")

	err := newApp().Run([]string{"cli", "--log-level", "error", "backtest",
		"--data", candles,
		"--strategy", "breakout", "--param", "lookback=5",
		"--fee-bps", "0",
		"--out", out,
	})
	require.NoError(t, err)
	assert.Equal(t, 41, countLines(t, out))
}

func TestBacktestCommandDefaultsParams(t *testing.T) {
	candles := writeCandles(t, 30)
	out := filepath.Join(t.TempDir(), "ledger.csv")

	err := newApp().Run([]string{"cli", "--log-level", "error", "backtest",
		"--data", candles, "--strategy", "bollinger", "--n", "25", "--out", out,
	})
	require.NoError(t, err)
	assert.Equal(t, 26, countLines(t, out))
}

func TestBacktestCommandFromConfig(t *testing.T) {
	dir := t.TempDir()
	candles := writeCandles(t, 30)
	out := filepath.Join(dir, "out.csv")
	cfg := fmt.Sprintf("data_file: %s\nfee_bps: 10\nstrategy:\n  name: ema_crossover\n  params:\n    fast_span: 3\n    slow_span: 8\noutput:\n  csv: %s\n", candles, out)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	err := newApp().Run([]string{"cli", "--log-level", "error", "backtest", "--config", cfgPath, "--param", "slow_span=10"})
	require.NoError(t, err)
	assert.Equal(t, 31, countLines(t, out))
}

func TestBacktestCommandErrors(t *testing.T) {
	candles := writeCandles(t, 10)
	out := filepath.Join(t.TempDir(), "ledger.csv")

	err := newApp().Run([]string{"cli", "backtest", "--data", candles, "--out", out})
	assert.Error(t, err)

	err = newApp().Run([]string{"cli", "backtest", "--data", candles, "--strategy", "macd", "--out", out})
	assert.ErrorIs(t, err, model.ErrInvalidStrategy)

	err = newApp().Run([]string{"cli", "backtest", "--data", candles, "--strategy", "rsi2", "--fee-bps", "-2", "--out", out})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRankCommand(t *testing.T) {
	candles := writeCandles(t, 60)
	err := newApp().Run([]string{"cli", "--log-level", "error", "rank", "--data", candles})
	require.NoError(t, err)
}

func TestStrategiesCommand(t *testing.T) {
	require.NoError(t, newApp().Run([]string{"cli", "strategies"}))
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SIGNAL_BACKTEST_TEST_VAR=hello\n"), 0o644))
	t.Setenv("SIGNAL_BACKTEST_TEST_VAR", "")
	require.NoError(t, os.Unsetenv("SIGNAL_BACKTEST_TEST_VAR"))
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("SIGNAL_BACKTEST_TEST_VAR"))
}
