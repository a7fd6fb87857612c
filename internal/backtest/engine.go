package backtest

import (
	"fmt"
	"math"

	"signal-backtest/internal/model"
	"signal-backtest/internal/strategy"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run evaluates strat over series and simulates the resulting signals.
// Parameters are checked before any computation happens.
func (e *Engine) Run(series model.Series, strat strategy.Strategy, feeBps float64) (*Result, error) {
	if err := validateFee(feeBps); err != nil {
		return nil, err
	}
	signals, err := strategy.Evaluate(series, strat)
	if err != nil {
		return nil, err
	}
	res, err := Simulate(series, signals, feeBps)
	if err != nil {
		return nil, err
	}
	res.Strategy = strat.Name()
	return res, nil
}

// Simulate runs a long/flat/short backtest of signals over bars.
//
// The position held during bar i is the signal from bar i-1; bar 0 is always
// flat. A fee of feeBps basis points is charged per unit of position change,
// so a flip from short to long pays twice. Equity compounds from 1.
func Simulate(bars model.Series, signals []model.Signal, feeBps float64) (*Result, error) {
	if err := validateFee(feeBps); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: backtest needs at least one bar", model.ErrEmptySeries)
	}
	if len(signals) != len(bars) {
		return nil, fmt.Errorf("%w: %d signals for %d bars", model.ErrInvalidParameter, len(signals), len(bars))
	}
	for i, s := range signals {
		if s < model.Short || s > model.Long {
			return nil, fmt.Errorf("%w: signal %d at bar %d is outside [-1, 1]", model.ErrInvalidParameter, s, i)
		}
	}

	feeRate := feeBps / 10000.0
	ledger := make([]LedgerRow, 0, len(bars))
	equity := 1.0
	totalFees := 0.0
	trades := 0
	prevPos := model.Flat

	for idx, bar := range bars {
		pos := model.Flat
		ret := 0.0
		if idx > 0 {
			pos = signals[idx-1]
			ret = pctChange(bars[idx-1].Close, bar.Close)
		}

		change := math.Abs(float64(pos - prevPos))
		fee := change * feeRate
		if change > 0 {
			trades++
		}
		net := float64(pos)*ret - fee
		equity *= 1 + net
		totalFees += fee

		ledger = append(ledger, LedgerRow{
			Index: idx,

			Timestamp: bar.Timestamp,
			Time:      bar.Time(),

			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,

			Signal:   signals[idx],
			Position: pos,
			Action:   model.ActionFromPosition(pos),

			Return:    ret,
			Fee:       fee,
			NetReturn: net,
			Equity:    equity,
		})
		prevPos = pos
	}

	return &Result{
		FeeBps:      feeBps,
		Ledger:      ledger,
		FinalEquity: equity,
		TotalReturn: equity - 1,
		TotalFees:   totalFees,
		Trades:      trades,
	}, nil
}

func validateFee(feeBps float64) error {
	if !(feeBps >= 0) || math.IsInf(feeBps, 0) {
		return fmt.Errorf("%w: fee_bps must be a non-negative number, got %v", model.ErrInvalidParameter, feeBps)
	}
	return nil
}

// pctChange treats a zero previous close as no change rather than an
// infinite return.
func pctChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev
}
