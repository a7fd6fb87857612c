package indicator

import (
	"fmt"
	"math"

	"signal-backtest/internal/model"
)

// Bands are Bollinger bands aligned with the input series.
type Bands struct {
	Middle []Value
	Upper  []Value
	Lower  []Value
}

// Bollinger computes middle = rolling mean and upper/lower = middle ± mult
// times the rolling sample (N-1) standard deviation.
func Bollinger(series []float64, period int, mult float64) (Bands, error) {
	if period < 2 {
		return Bands{}, fmt.Errorf("%w: bollinger period must be >= 2, got %d", model.ErrInvalidParameter, period)
	}
	if !(mult > 0) || math.IsInf(mult, 0) {
		return Bands{}, fmt.Errorf("%w: bollinger std multiplier must be > 0, got %v", model.ErrInvalidParameter, mult)
	}
	n := len(series)
	b := Bands{
		Middle: make([]Value, n),
		Upper:  make([]Value, n),
		Lower:  make([]Value, n),
	}
	scan(series, period, func(i int, m *moments) {
		mid := m.mean()
		width := mult * m.sampleStd()
		b.Middle[i] = Defined(mid)
		b.Upper[i] = Defined(mid + width)
		b.Lower[i] = Defined(mid - width)
	})
	return b, nil
}
