package strategy

import (
	"signal-backtest/internal/indicator"
	"signal-backtest/internal/model"
)

const (
	RSI2Period     = 2
	RSI2Oversold   = 10.0
	RSI2Overbought = 90.0
)

// RSI2 is the short-horizon mean reversion rule on a 2-bar RSI:
// long below 10, short above 90, flat otherwise.
type RSI2 struct{}

func (RSI2) Kind() Kind { return KindRSI2 }

func (RSI2) Name() string { return string(KindRSI2) }

func (RSI2) Validate() error { return nil }

func (RSI2) Signals(series model.Series) ([]model.Signal, error) {
	rsi, err := indicator.RSI(series.Closes(), RSI2Period)
	if err != nil {
		return nil, err
	}
	out := make([]model.Signal, len(series))
	for i, cell := range rsi {
		v, ok := cell.Get()
		switch {
		case !ok:
			out[i] = model.Flat
		case v < RSI2Oversold:
			out[i] = model.Long
		case v > RSI2Overbought:
			out[i] = model.Short
		default:
			out[i] = model.Flat
		}
	}
	return out, nil
}
