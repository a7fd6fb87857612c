// Package alert watches a symbol's last price and reports when it moves
// between the bands defined by an upper and a lower threshold.
package alert

import (
	"fmt"
	"math"
	"strings"

	"signal-backtest/internal/model"
)

type State string

const (
	StateMid  State = "mid"
	StateHigh State = "high"
	StateLow  State = "low"
)

// Thresholds are inclusive. A nil bound is not checked.
type Thresholds struct {
	Upper *float64
	Lower *float64
}

func (t Thresholds) Validate() error {
	for name, v := range map[string]*float64{"upper": t.Upper, "lower": t.Lower} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s threshold must be finite, got %v", model.ErrInvalidParameter, name, *v)
		}
	}
	return nil
}

func (t Thresholds) String() string {
	return fmt.Sprintf("UPPER=%s LOWER=%s", fmtBound(t.Upper), fmtBound(t.Lower))
}

// Classify places price relative to t. Upper is checked first and lower
// second, so a price satisfying both (lower >= upper) is StateLow.
func Classify(price float64, t Thresholds) State {
	state := StateMid
	if t.Upper != nil && price >= *t.Upper {
		state = StateHigh
	}
	if t.Lower != nil && price <= *t.Lower {
		state = StateLow
	}
	return state
}

// Message is the human-readable transition text pushed to notifiers.
func Message(symbol string, price float64, state State) string {
	return fmt.Sprintf("%s price=%.4f crossed into %s", symbol, price, strings.ToUpper(string(state)))
}

func fmtBound(v *float64) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprintf("%g", *v)
}

func Float(v float64) *float64 { return &v }
