package indicator

import (
	"fmt"

	"signal-backtest/internal/model"
)

// EMA is the recursive exponential moving average with alpha = 2/(span+1),
// seeded with the first input (the adjust=false convention). Every output
// cell is defined; there is no warm-up gap.
func EMA(series []float64, span int) ([]Value, error) {
	if span < 1 {
		return nil, fmt.Errorf("%w: ema span must be >= 1, got %d", model.ErrInvalidParameter, span)
	}
	out := make([]Value, len(series))
	if len(series) == 0 {
		return out, nil
	}
	alpha := 2.0 / (float64(span) + 1)
	prev := series[0]
	out[0] = Defined(prev)
	for i := 1; i < len(series); i++ {
		prev = alpha*series[i] + (1-alpha)*prev
		out[i] = Defined(prev)
	}
	return out, nil
}
