package strategy

import (
	"fmt"

	"signal-backtest/internal/indicator"
	"signal-backtest/internal/model"
)

// EMACrossover is long while the fast EMA of closes is above the slow EMA and
// short otherwise. It is never flat once both averages exist, and both exist
// from the first bar. FastSpan < SlowSpan is the usual setup but not required.
type EMACrossover struct {
	FastSpan int
	SlowSpan int
}

func (s EMACrossover) Kind() Kind { return KindEMACrossover }

func (s EMACrossover) Name() string {
	return fmt.Sprintf("%s(%d,%d)", KindEMACrossover, s.FastSpan, s.SlowSpan)
}

func (s EMACrossover) Validate() error {
	if s.FastSpan < 1 {
		return invalid("fast_span must be >= 1, got %d", s.FastSpan)
	}
	if s.SlowSpan < 1 {
		return invalid("slow_span must be >= 1, got %d", s.SlowSpan)
	}
	return nil
}

func (s EMACrossover) Signals(series model.Series) ([]model.Signal, error) {
	closes := series.Closes()
	fast, err := indicator.EMA(closes, s.FastSpan)
	if err != nil {
		return nil, err
	}
	slow, err := indicator.EMA(closes, s.SlowSpan)
	if err != nil {
		return nil, err
	}

	out := make([]model.Signal, len(series))
	for i := range out {
		f, okFast := fast[i].Get()
		sl, okSlow := slow[i].Get()
		switch {
		case !okFast || !okSlow:
			out[i] = model.Flat
		case f > sl:
			out[i] = model.Long
		default:
			out[i] = model.Short
		}
	}
	return out, nil
}
