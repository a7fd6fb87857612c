package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"signal-backtest/internal/backtest"
	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/logging"
	"signal-backtest/internal/model"
	"signal-backtest/internal/strategy"
)

// Demo:
// - Load candles from a file, or fetch them from an exchange
// - Build a strategy (EMA 9/21 unless --config says otherwise)
// - Print the first bars of the ledger to show how signals become positions
func main() {
	dataPath := flag.String("data", "", "Path to a .csv or .json candle file (default: fetch from the exchange)")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	n := flag.Int("n", 12, "Number of ledger rows to print")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/ledger.csv)")
	flag.Parse()

	log := logging.New("warn")

	cfg := &config.Config{}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fail(err)
		}
		cfg = loaded
	}
	cfg.ApplyDefaults()

	// Strategy defaults.
	var strat strategy.Strategy = strategy.EMACrossover{FastSpan: 9, SlowSpan: 21}
	if cfg.Strategy.Name != "" {
		s, err := cfg.Strategy.Build()
		if err != nil {
			fail(err)
		}
		strat = s
	}

	var (
		series model.Series
		err    error
	)
	if *dataPath != "" {
		series, err = data.LoadCandles(*dataPath)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		var ex data.Exchange
		ex, err = data.NewExchange(cfg.Exchange, data.Options{Logger: &log})
		if err == nil {
			series, err = ex.FetchOHLCV(ctx, cfg.Symbol, cfg.Timeframe, cfg.Limit)
		}
	}
	if err != nil {
		fail(err)
	}

	result, err := backtest.New().Run(series, strat, cfg.Fee())
	if err != nil {
		fail(err)
	}

	fmt.Printf("Loaded %d candles %s .. %s\n", len(series),
		series[0].Time().Format("2006-01-02 15:04"), series[len(series)-1].Time().Format("2006-01-02 15:04"))
	fmt.Printf("Strategy=%s Fee=%.2f bps\n\n", result.Strategy, result.FeeBps)

	for i := 0; i < min(*n, len(result.Ledger)); i++ {
		r := result.Ledger[i]
		fmt.Printf(
			"%s close=%10.4f  signal=%+d  action=%-5s  ret=%+.5f  fee=%.5f  equity=%.5f\n",
			r.Time.Format("2006-01-02 15:04"),
			r.Close,
			r.Signal,
			string(r.Action),
			r.Return,
			r.Fee,
			r.Equity,
		)
	}

	if *outCSV != "" {
		if err := backtest.WriteLedgerCSV(*outCSV, result.Ledger); err != nil {
			fail(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	fmt.Printf("\nDone. Final equity=%.4f Trades=%d\n", result.FinalEquity, result.Trades)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
