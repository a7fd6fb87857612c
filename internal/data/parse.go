package data

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"signal-backtest/internal/model"
)

// parseDecimal reads an exchange price string exactly before converting it to
// float64 for the numeric core.
func parseDecimal(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// parseNumber accepts the shapes kline arrays use: quoted decimals, bare JSON
// numbers, and json.Number.
func parseNumber(v any) (float64, error) {
	switch x := v.(type) {
	case string:
		return parseDecimal(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("not a finite number: %v", x)
		}
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case json.Number:
		return parseDecimal(x.String())
	}
	return 0, fmt.Errorf("unexpected value %v (%T)", v, v)
}

func parseTimestamp(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case json.Number:
		return x.Int64()
	}
	f, err := parseNumber(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("timestamp %v is not an integer", f)
	}
	return int64(f), nil
}

// parseKlineRow reads the leading [ts, open, high, low, close, volume] of a
// kline row. Volume may be absent.
func parseKlineRow(row []any) (model.Candle, error) {
	if len(row) < 5 {
		return model.Candle{}, fmt.Errorf("expected at least 5 fields, got %d", len(row))
	}
	ts, err := parseTimestamp(row[0])
	if err != nil {
		return model.Candle{}, fmt.Errorf("timestamp: %w", err)
	}
	var vals [5]float64
	n := len(row) - 1
	if n > 5 {
		n = 5
	}
	for i := 0; i < n; i++ {
		v, err := parseNumber(row[i+1])
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return model.Candle{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
