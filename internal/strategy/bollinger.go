package strategy

import (
	"fmt"
	"math"

	"signal-backtest/internal/indicator"
	"signal-backtest/internal/model"
)

// Bollinger fades moves outside the bands: long when the close is below the
// lower band, short when above the upper band.
type Bollinger struct {
	Period        int
	StdMultiplier float64
}

func (s Bollinger) Kind() Kind { return KindBollinger }

func (s Bollinger) Name() string {
	return fmt.Sprintf("%s(%d,%g)", KindBollinger, s.Period, s.StdMultiplier)
}

func (s Bollinger) Validate() error {
	if s.Period < 2 {
		return invalid("period must be >= 2, got %d", s.Period)
	}
	if !(s.StdMultiplier > 0) || math.IsInf(s.StdMultiplier, 0) {
		return invalid("std_multiplier must be > 0, got %v", s.StdMultiplier)
	}
	return nil
}

func (s Bollinger) Signals(series model.Series) ([]model.Signal, error) {
	bands, err := indicator.Bollinger(series.Closes(), s.Period, s.StdMultiplier)
	if err != nil {
		return nil, err
	}
	out := make([]model.Signal, len(series))
	for i, c := range series {
		upper, okUpper := bands.Upper[i].Get()
		lower, okLower := bands.Lower[i].Get()
		switch {
		case !okUpper || !okLower:
			out[i] = model.Flat
		case c.Close < lower:
			out[i] = model.Long
		case c.Close > upper:
			out[i] = model.Short
		default:
			out[i] = model.Flat
		}
	}
	return out, nil
}
