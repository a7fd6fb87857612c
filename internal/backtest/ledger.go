package backtest

import (
	"time"

	"signal-backtest/internal/model"
)

// LedgerRow is one row of per-bar output.
// This is the primary artifact for "what happened" in a backtest.
type LedgerRow struct {
	Index int

	Timestamp int64 // bar open, Unix milliseconds
	Time      time.Time

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	// Signal is the strategy output at this bar; Position is what was held
	// during this bar, i.e. the previous bar's signal.
	Signal   model.Signal
	Position model.Signal
	Action   model.Action

	Return    float64 // close-to-close change
	Fee       float64 // fraction of equity charged for the position change
	NetReturn float64 // Position*Return - Fee
	Equity    float64 // compounded, 1 at the first bar
}

// ScaledEquity expresses equity in price units of the first close, which is
// how it is overlaid on a candlestick chart.
func (r LedgerRow) ScaledEquity(firstClose float64) float64 {
	return r.Equity * firstClose
}

type Result struct {
	Strategy string
	FeeBps   float64

	Ledger []LedgerRow

	FinalEquity float64
	TotalReturn float64
	TotalFees   float64
	// Trades counts bars where the position changed.
	Trades int
}
