package analysis

import (
	"math"
	"sort"
	"time"

	"signal-backtest/internal/backtest"
	"signal-backtest/internal/model"
)

// Stats is a run-level summary of a backtest ledger, used for reporting and
// for ranking strategies against each other.
type Stats struct {
	Strategy string
	FeeBps   float64

	StartUTC time.Time
	EndUTC   time.Time
	Bars     int

	FinalEquity float64
	TotalReturn float64
	// BuyHoldReturn is last close over first close minus one, for comparison.
	BuyHoldReturn float64
	MaxDrawdown   float64 // peak-to-trough fraction, reported as a positive number

	Trades    int
	TotalFees float64
	Exposure  float64 // fraction of bars with a non-flat position

	LongBars  int
	ShortBars int

	// Distribution of per-bar net returns.
	MeanReturn float64
	P05Return  float64
	P95Return  float64
}

func Summarize(res *backtest.Result) Stats {
	s := Stats{}
	if res == nil || len(res.Ledger) == 0 {
		return s
	}
	ledger := res.Ledger
	first, last := ledger[0], ledger[len(ledger)-1]

	s.Strategy = res.Strategy
	s.FeeBps = res.FeeBps
	s.StartUTC = first.Time
	s.EndUTC = last.Time
	s.Bars = len(ledger)
	s.FinalEquity = res.FinalEquity
	s.TotalReturn = res.TotalReturn
	s.Trades = res.Trades
	s.TotalFees = res.TotalFees
	if first.Close != 0 {
		s.BuyHoldReturn = last.Close/first.Close - 1
	}

	peak := 1.0
	sum := 0.0
	rets := make([]float64, 0, len(ledger))
	for _, r := range ledger {
		if r.Equity > peak {
			peak = r.Equity
		}
		if peak > 0 {
			if dd := 1 - r.Equity/peak; dd > s.MaxDrawdown {
				s.MaxDrawdown = dd
			}
		}
		switch {
		case r.Position > model.Flat:
			s.LongBars++
		case r.Position < model.Flat:
			s.ShortBars++
		}
		sum += r.NetReturn
		rets = append(rets, r.NetReturn)
	}
	s.Exposure = float64(s.LongBars+s.ShortBars) / float64(s.Bars)
	s.MeanReturn = sum / float64(len(rets))

	sort.Float64s(rets)
	s.P05Return = percentileSorted(rets, 0.05)
	s.P95Return = percentileSorted(rets, 0.95)
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
