package data

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"signal-backtest/internal/model"
)

// LoadCandles picks a loader by file extension (.csv or .json).
func LoadCandles(path string) (model.Series, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCandlesCSV(path)
	case ".json":
		return LoadCandlesJSON(path)
	}
	return nil, fmt.Errorf("%w: unsupported candle file %q (want .csv or .json)", model.ErrInvalidParameter, path)
}

// LoadCandlesJSON reads either an array of [ts, open, high, low, close, volume]
// rows, as ccxt's fetch_ohlcv returns, or an array of candle objects.
func LoadCandlesJSON(path string) (model.Series, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCandlesJSON(raw)
}

func ParseCandlesJSON(raw []byte) (model.Series, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("[{")) || bytes.Equal(trimmed, []byte("[]")) {
		var series model.Series
		if err := sonic.Unmarshal(trimmed, &series); err != nil {
			return nil, fmt.Errorf("parse candles: %w", err)
		}
		return series, nil
	}

	var rows [][]any
	if err := sonic.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("parse candles: %w", err)
	}
	out := make(model.Series, 0, len(rows))
	for i, row := range rows {
		c, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("candle row %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// LoadCandlesCSV reads a CSV with a header naming at least ts (or timestamp),
// open, high, low and close. A volume column is optional; other columns are
// ignored, so a ledger written by the backtest package loads back as candles.
func LoadCandlesCSV(path string) (model.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCandlesCSV(f)
}

func ReadCandlesCSV(in io.Reader) (model.Series, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return model.Series{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if i, ok := col["timestamp"]; ok {
		if _, dup := col["ts"]; !dup {
			col["ts"] = i
		}
	}
	for _, name := range []string{"ts", "open", "high", "low", "close"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: csv header is missing column %q", model.ErrInvalidParameter, name)
		}
	}
	volIdx, hasVol := col["volume"]

	var out model.Series
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(strings.TrimSpace(rec[col["ts"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: timestamp: %w", line, err)
		}
		c := model.Candle{Timestamp: ts}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"open", &c.Open},
			{"high", &c.High},
			{"low", &c.Low},
			{"close", &c.Close},
		}
		for _, fd := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col[fd.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, fd.name, err)
			}
			*fd.dst = v
		}
		if hasVol && strings.TrimSpace(rec[volIdx]) != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[volIdx]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: volume: %w", line, err)
			}
			c.Volume = v
		}
		out = append(out, c)
	}
	return out, nil
}
