package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"signal-backtest/internal/analysis"
)

var rankCommand = &cli.Command{
	Name:      "rank",
	Usage:     "run every strategy with default parameters and rank by final equity",
	UsageText: "cli rank --symbol BTC/USDT --timeframe 1h --limit 1000",
	Flags:     sourceFlags,
	Action:    runRank,
}

func runRank(c *cli.Context) error {
	log := newLogger()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	series, err := loadSeries(c.Context, cfg, log, c.Int("n"))
	if err != nil {
		return err
	}
	candidates, err := analysis.DefaultCandidates()
	if err != nil {
		return err
	}
	ranked, err := analysis.RankStrategies(series, candidates, cfg.Fee())
	if err != nil {
		return err
	}

	fmt.Printf("%s, %d bars, fee %.2f bps\n", describeSource(cfg), len(series), cfg.Fee())
	fmt.Printf("%-4s %-24s %-10s %-10s %-10s %-7s %-9s\n", "rank", "strategy", "equity", "return%", "maxdd%", "trades", "exposure%")
	for _, r := range ranked {
		fmt.Printf(
			"%-4d %-24s %-10.4f %-10.2f %-10.2f %-7d %-9.1f\n",
			r.Rank,
			r.Strategy,
			r.FinalEquity,
			r.TotalReturn*100,
			r.MaxDrawdown*100,
			r.Trades,
			r.Exposure*100,
		)
	}
	return nil
}
