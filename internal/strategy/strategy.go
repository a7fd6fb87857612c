package strategy

import (
	"fmt"

	"signal-backtest/internal/model"
)

// Kind identifies a strategy variant.
type Kind string

const (
	KindEMACrossover Kind = "ema_crossover"
	KindRSI2         Kind = "rsi2"
	KindBollinger    Kind = "bollinger"
	KindBreakout     Kind = "breakout"
)

// Strategy turns a candle series into one signal per bar.
//
// Implementations carry only their own typed parameters. Bars whose
// indicator inputs are still undefined must produce model.Flat.
type Strategy interface {
	Kind() Kind
	Name() string
	Validate() error
	Signals(series model.Series) ([]model.Signal, error)
}

// Evaluate validates s and computes its signal sequence over series.
// The result has the same length and alignment as series.
func Evaluate(series model.Series, s Strategy) ([]model.Signal, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: strategy is nil", model.ErrInvalidStrategy)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one bar", model.ErrEmptySeries, s.Name())
	}
	signals, err := s.Signals(series)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	if len(signals) != len(series) {
		return nil, fmt.Errorf("%s: produced %d signals for %d bars", s.Name(), len(signals), len(series))
	}
	return signals, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidParameter}, args...)...)
}
