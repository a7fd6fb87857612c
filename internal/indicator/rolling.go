package indicator

import (
	"fmt"
	"math"

	"signal-backtest/internal/model"
)

// moments holds running sums for a trailing window. Values are shifted by the
// first input so the sum-of-squares stays well conditioned for price-like
// data far from zero.
type moments struct {
	period  int
	shift   float64
	sum     float64
	sumSq   float64
	nonzero int
}

func (m *moments) add(x float64) {
	d := x - m.shift
	m.sum += d
	m.sumSq += d * d
	if x != 0 {
		m.nonzero++
	}
}

func (m *moments) remove(x float64) {
	d := x - m.shift
	m.sum -= d
	m.sumSq -= d * d
	if x != 0 {
		m.nonzero--
	}
}

func (m *moments) mean() float64 {
	// An all-zero window has a mean of exactly zero; running sums alone can
	// leave residue like 1e-17 after values enter and leave.
	if m.nonzero == 0 {
		return 0
	}
	return m.shift + m.sum/float64(m.period)
}

// sampleStd is the N-1 standard deviation of the window.
func (m *moments) sampleStd() float64 {
	p := float64(m.period)
	v := (m.sumSq - m.sum*m.sum/p) / (p - 1)
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// scan walks xs with a trailing window of period bars (inclusive of the
// current bar) and calls emit once the window is full.
func scan(xs []float64, period int, emit func(i int, m *moments)) {
	if len(xs) == 0 {
		return
	}
	m := &moments{period: period, shift: xs[0]}
	for i, x := range xs {
		m.add(x)
		if i >= period {
			m.remove(xs[i-period])
		}
		if i >= period-1 {
			emit(i, m)
		}
	}
}

func rollingMean(xs []float64, period int) []Value {
	out := make([]Value, len(xs))
	scan(xs, period, func(i int, m *moments) {
		out[i] = Defined(m.mean())
	})
	return out
}

// SMA is the trailing simple moving average. The first period-1 cells are
// undefined.
func SMA(series []float64, period int) ([]Value, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: sma period must be >= 1, got %d", model.ErrInvalidParameter, period)
	}
	return rollingMean(series, period), nil
}

// RollingMax is the trailing maximum over period bars.
func RollingMax(series []float64, period int) ([]Value, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: rolling max period must be >= 1, got %d", model.ErrInvalidParameter, period)
	}
	return rollingExtreme(series, period, func(a, b float64) bool { return a >= b }), nil
}

// RollingMin is the trailing minimum over period bars.
func RollingMin(series []float64, period int) ([]Value, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: rolling min period must be >= 1, got %d", model.ErrInvalidParameter, period)
	}
	return rollingExtreme(series, period, func(a, b float64) bool { return a <= b }), nil
}

// rollingExtreme keeps a monotonic deque of indices; the front is always the
// extreme of the current window.
func rollingExtreme(xs []float64, period int, dominates func(a, b float64) bool) []Value {
	out := make([]Value, len(xs))
	dq := make([]int, 0, period)
	for i, x := range xs {
		for len(dq) > 0 && dominates(x, xs[dq[len(dq)-1]]) {
			dq = dq[:len(dq)-1]
		}
		dq = append(dq, i)
		if dq[0] <= i-period {
			dq = dq[1:]
		}
		if i >= period-1 {
			out[i] = Defined(xs[dq[0]])
		}
	}
	return out
}
