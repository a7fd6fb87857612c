package indicator

import (
	"fmt"

	"signal-backtest/internal/model"
)

// RSI is the relative strength index over simple rolling means of gains and
// losses (not Wilder smoothing). The first bar has no delta and contributes a
// zero gain and loss; the first period-1 cells are undefined.
//
// A window with no losses has an undefined ratio and therefore an undefined
// RSI, rather than the conventional 100.
func RSI(series []float64, period int) ([]Value, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: rsi period must be >= 1, got %d", model.ErrInvalidParameter, period)
	}
	n := len(series)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := series[i] - series[i-1]
		switch {
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)

	out := make([]Value, n)
	for i := range out {
		g, ok := avgGain[i].Get()
		if !ok {
			continue
		}
		l, ok := avgLoss[i].Get()
		if !ok || l == 0 {
			continue
		}
		rs := g / l
		out[i] = Defined(100 - 100/(1+rs))
	}
	return out, nil
}
