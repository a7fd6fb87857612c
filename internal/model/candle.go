package model

import "time"

// Candle is one OHLCV bar. Timestamp is the bar open time in Unix milliseconds,
// the same unit exchanges return from their kline endpoints.
type Candle struct {
	Timestamp int64   `json:"ts"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// Series is a chronologically ordered candle sequence.
// Nothing in this module mutates a Series in place.
type Series []Candle

func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}
	return out
}

func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Low
	}
	return out
}

// Head returns at most the first n bars. n <= 0 means all.
func (s Series) Head(n int) Series {
	if n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}

// Tail returns at most the last n bars. n <= 0 means all.
func (s Series) Tail(n int) Series {
	if n > 0 && n < len(s) {
		return s[len(s)-n:]
	}
	return s
}
