package strategy

import (
	"fmt"

	"signal-backtest/internal/indicator"
	"signal-backtest/internal/model"
)

// Breakout goes long when the close clears the highest high of the previous
// Lookback bars and short when it falls under their lowest low. The channel
// ends at the prior bar, so the current bar never sees its own range.
type Breakout struct {
	Lookback int
}

func (s Breakout) Kind() Kind { return KindBreakout }

func (s Breakout) Name() string {
	return fmt.Sprintf("%s(%d)", KindBreakout, s.Lookback)
}

func (s Breakout) Validate() error {
	if s.Lookback < 1 {
		return invalid("lookback must be >= 1, got %d", s.Lookback)
	}
	return nil
}

func (s Breakout) Signals(series model.Series) ([]model.Signal, error) {
	highs, err := indicator.RollingMax(series.Highs(), s.Lookback)
	if err != nil {
		return nil, err
	}
	lows, err := indicator.RollingMin(series.Lows(), s.Lookback)
	if err != nil {
		return nil, err
	}
	prevHigh := indicator.Lag(highs, 1)
	prevLow := indicator.Lag(lows, 1)

	out := make([]model.Signal, len(series))
	for i, c := range series {
		hi, okHigh := prevHigh[i].Get()
		lo, okLow := prevLow[i].Get()
		switch {
		case !okHigh || !okLow:
			out[i] = model.Flat
		case c.Close > hi:
			out[i] = model.Long
		case c.Close < lo:
			out[i] = model.Short
		default:
			out[i] = model.Flat
		}
	}
	return out, nil
}
