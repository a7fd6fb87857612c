package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-backtest/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCandlesJSONRows(t *testing.T) {
	path := writeFile(t, "btc.json", `[[1700000000000, 100, 101, 99, 100.5, 3], [1700003600000, 100.5, 102, 100, 101.5, 4]]`)
	series, err := LoadCandles(path)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, model.Candle{Timestamp: 1700000000000, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 3}, series[0])
}

func TestLoadCandlesJSONObjects(t *testing.T) {
	series, err := ParseCandlesJSON([]byte(`[{"ts":1,"open":1,"high":2,"low":0.5,"close":1.5,"volume":9}]`))
	require.NoError(t, err)
	assert.Equal(t, model.Series{{Timestamp: 1, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 9}}, series)

	series, err = ParseCandlesJSON([]byte(` [] `))
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestLoadCandlesJSONErrors(t *testing.T) {
	_, err := ParseCandlesJSON([]byte(`[[1, 2, 3]]`))
	assert.Error(t, err)
	_, err = ParseCandlesJSON([]byte(`{"oops": true}`))
	assert.Error(t, err)
}

func TestReadCandlesCSV(t *testing.T) {
	in := "ts,open,high,low,close,volume\n1,10,11,9,10.5,100\n2,10.5,12,10,11.5,\n"
	series, err := ReadCandlesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 10.5, series[0].Close)
	assert.Equal(t, 100.0, series[0].Volume)
	assert.Zero(t, series[1].Volume)
}

func TestReadCandlesCSVLedgerHeader(t *testing.T) {
	in := "index,timestamp,datetime,open,high,low,close,volume,signal\n" +
		"0,1700000000000,2023-11-14T22:13:20Z,1,2,0.5,1.5,7,1\n"
	series, err := ReadCandlesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, int64(1700000000000), series[0].Timestamp)
	assert.Equal(t, 7.0, series[0].Volume)
}

func TestReadCandlesCSVErrors(t *testing.T) {
	_, err := ReadCandlesCSV(strings.NewReader("ts,open,high,low\n1,2,3,4\n"))
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = ReadCandlesCSV(strings.NewReader("ts,open,high,low,close\n1,2,x,4,5\n"))
	assert.ErrorContains(t, err, "line 2: high")

	series, err := ReadCandlesCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestLoadCandlesUnknownExtension(t *testing.T) {
	_, err := LoadCandles("prices.parquet")
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestMarketsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "markets.json")
	list := &MarketList{
		Exchange:  "binance",
		UpdatedAt: "2024-01-01T00:00:00Z",
		Markets: []Market{
			{Symbol: "ETH/USDT", ID: "ETHUSDT", Base: "ETH", Quote: "USDT", Exchange: "binance"},
			{Symbol: "BTC/EUR", ID: "BTCEUR", Base: "BTC", Quote: "EUR", Exchange: "binance"},
		},
	}
	require.NoError(t, SaveMarkets(list, path))

	loaded, err := LoadMarkets(path)
	require.NoError(t, err)
	assert.Equal(t, list, loaded)

	usdt := loaded.FilterQuote("USDT")
	require.Len(t, usdt, 1)
	assert.Equal(t, "ETH/USDT", usdt[0].Symbol)

	SortMarkets(loaded.Markets)
	assert.Equal(t, "BTC/EUR", loaded.Markets[0].Symbol)
}

func TestDefaultMarketsPath(t *testing.T) {
	t.Setenv("MARKETS_FILE", "")
	assert.Equal(t, filepath.Join("data", "markets_bybit.json"), DefaultMarketsPath("bybit"))
	t.Setenv("MARKETS_FILE", "/tmp/m.json")
	assert.Equal(t, "/tmp/m.json", DefaultMarketsPath("bybit"))
}
