package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-backtest/internal/model"
)

func closesSeries(closes ...float64) model.Series {
	out := make(model.Series, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{
			Timestamp: int64(i) * 60_000,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1,
		}
	}
	return out
}

// choppy alternates direction with growing amplitude so every strategy fires.
func choppy(n int) model.Series {
	closes := make([]float64, n)
	for i := range closes {
		amp := float64(i%7 + 1)
		if i%2 == 0 {
			closes[i] = 100 + amp
		} else {
			closes[i] = 100 - amp
		}
	}
	s := closesSeries(closes...)
	for i := range s {
		s[i].High = s[i].Close + 0.5
		s[i].Low = s[i].Close - 0.5
	}
	return s
}

func TestEMACrossoverRisingSeries(t *testing.T) {
	series := closesSeries(10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20)
	sig, err := Evaluate(series, EMACrossover{FastSpan: 2, SlowSpan: 3})
	require.NoError(t, err)
	require.Len(t, sig, len(series))

	// Both EMAs start at the first close, so bar 0 is not "above".
	assert.Equal(t, model.Short, sig[0])
	for i := 1; i < len(sig); i++ {
		assert.Equalf(t, model.Long, sig[i], "bar %d", i)
	}
}

func TestEMACrossoverNeverFlat(t *testing.T) {
	sig, err := Evaluate(choppy(60), EMACrossover{FastSpan: 3, SlowSpan: 8})
	require.NoError(t, err)
	for _, s := range sig {
		assert.NotEqual(t, model.Flat, s)
	}
}

func TestRSI2Signals(t *testing.T) {
	sig, err := Evaluate(closesSeries(10, 9, 8), RSI2{})
	require.NoError(t, err)
	assert.Equal(t, []model.Signal{model.Flat, model.Long, model.Long}, sig)

	sig, err = Evaluate(closesSeries(10, 9.9, 12), RSI2{})
	require.NoError(t, err)
	assert.Equal(t, model.Short, sig[2])
}

func TestRSI2FlatWithoutLosses(t *testing.T) {
	sig, err := Evaluate(closesSeries(1, 2, 3, 4, 5), RSI2{})
	require.NoError(t, err)
	for _, s := range sig {
		assert.Equal(t, model.Flat, s)
	}
}

func TestBollingerSignals(t *testing.T) {
	sig, err := Evaluate(closesSeries(10, 10, 10, 10, 5), Bollinger{Period: 4, StdMultiplier: 1})
	require.NoError(t, err)
	assert.Equal(t, []model.Signal{0, 0, 0, 0, model.Long}, sig)

	sig, err = Evaluate(closesSeries(10, 10, 10, 10, 15), Bollinger{Period: 4, StdMultiplier: 1})
	require.NoError(t, err)
	assert.Equal(t, model.Short, sig[4])

	sig, err = Evaluate(closesSeries(10, 10, 10, 10, 10), Bollinger{Period: 4, StdMultiplier: 1})
	require.NoError(t, err)
	assert.Equal(t, model.Flat, sig[4], "zero-width bands do not trigger")
}

func TestBreakoutSignals(t *testing.T) {
	sig, err := Evaluate(closesSeries(5, 5, 5, 5, 5, 9), Breakout{Lookback: 3})
	require.NoError(t, err)
	assert.Equal(t, []model.Signal{0, 0, 0, 0, 0, model.Long}, sig)

	sig, err = Evaluate(closesSeries(5, 5, 5, 5, 5, 1), Breakout{Lookback: 3})
	require.NoError(t, err)
	assert.Equal(t, model.Short, sig[5])
}

func TestBreakoutExcludesCurrentBar(t *testing.T) {
	// The current bar's own high is above its close; only prior bars count.
	series := closesSeries(5, 5, 5, 6)
	series[3].High = 10
	sig, err := Evaluate(series, Breakout{Lookback: 2})
	require.NoError(t, err)
	assert.Equal(t, model.Long, sig[3])
}

func TestBreakoutToleratesInvertedBars(t *testing.T) {
	series := closesSeries(5, 6, 7, 8)
	for i := range series {
		series[i].High, series[i].Low = series[i].Low-1, series[i].High+1
	}
	_, err := Evaluate(series, Breakout{Lookback: 2})
	require.NoError(t, err)
}

func TestFlatDuringWarmup(t *testing.T) {
	series := choppy(40)
	for _, tc := range []struct {
		strat  Strategy
		warmup int
	}{
		{RSI2{}, RSI2Period - 1},
		{Bollinger{Period: 10, StdMultiplier: 0.5}, 9},
		{Breakout{Lookback: 5}, 5},
	} {
		t.Run(tc.strat.Name(), func(t *testing.T) {
			sig, err := Evaluate(series, tc.strat)
			require.NoError(t, err)
			for i := 0; i < tc.warmup; i++ {
				assert.Equalf(t, model.Flat, sig[i], "bar %d", i)
			}
			fired := false
			for _, s := range sig[tc.warmup:] {
				fired = fired || s != model.Flat
			}
			assert.True(t, fired, "strategy never left flat after warm-up")
		})
	}
}

func TestSeriesShorterThanWindow(t *testing.T) {
	series := closesSeries(10)
	for _, s := range []Strategy{
		EMACrossover{FastSpan: 9, SlowSpan: 21},
		RSI2{},
		Bollinger{Period: 20, StdMultiplier: 2},
		Breakout{Lookback: 20},
	} {
		sig, err := Evaluate(series, s)
		require.NoError(t, err, s.Name())
		require.Len(t, sig, 1)
	}
}

func TestEvaluateErrors(t *testing.T) {
	_, err := Evaluate(nil, RSI2{})
	assert.ErrorIs(t, err, model.ErrEmptySeries)

	_, err = Evaluate(closesSeries(1), nil)
	assert.ErrorIs(t, err, model.ErrInvalidStrategy)

	_, err = Evaluate(closesSeries(1, 2), EMACrossover{FastSpan: 0, SlowSpan: 3})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Evaluate(closesSeries(1, 2), Bollinger{Period: 1, StdMultiplier: 2})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Evaluate(closesSeries(1, 2), Breakout{Lookback: 0})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestEvaluateDoesNotMutateSeries(t *testing.T) {
	series := choppy(30)
	orig := append(model.Series(nil), series...)
	for _, s := range []Strategy{EMACrossover{FastSpan: 2, SlowSpan: 5}, RSI2{}, Bollinger{Period: 5, StdMultiplier: 1}, Breakout{Lookback: 3}} {
		_, err := Evaluate(series, s)
		require.NoError(t, err)
	}
	assert.Equal(t, orig, series)
}
