package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"signal-backtest/internal/analysis"
	"signal-backtest/internal/backtest"
	"signal-backtest/internal/config"
	"signal-backtest/internal/strategy"
)

const defaultOut = "results/ledger.csv"

var backtestCommand = &cli.Command{
	Name:  "backtest",
	Usage: "run one strategy and write the per-bar ledger as CSV",
	UsageText: "cli backtest --config examples/config.yaml\n" +
		"cli backtest --symbol ETH/USDT --timeframe 4h --strategy bollinger --param period=20 --param std_multiplier=2",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "strategy kind (see `cli strategies`)"},
		&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "strategy parameter as key=value (repeatable)"},
		&cli.StringFlag{Name: "strategy-file", Usage: "YAML file holding a strategy block"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output CSV path (default: output.csv from config, else " + defaultOut + ")"},
	}, sourceFlags...),
	Action: runBacktest,
}

func runBacktest(c *cli.Context) error {
	log := newLogger()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyStrategyFlags(c, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	strat, err := cfg.Strategy.Build()
	if err != nil {
		return err
	}

	series, err := loadSeries(c.Context, cfg, log, c.Int("n"))
	if err != nil {
		return err
	}
	log.Debug().Int("bars", len(series)).Str("source", describeSource(cfg)).Msg("loaded candles")

	res, err := backtest.New().Run(series, strat, cfg.Fee())
	if err != nil {
		return err
	}

	outPath := c.String("out")
	if outPath == "" {
		outPath = cfg.Output.CSV
	}
	if outPath == "" {
		outPath = defaultOut
	}
	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := backtest.WriteLedgerCSV(outPath, res.Ledger); err != nil {
		return err
	}

	s := analysis.Summarize(res)
	fmt.Printf("Wrote %d rows to %s\n", len(res.Ledger), outPath)
	fmt.Printf("%s on %s, fee %.2f bps, %s .. %s\n",
		s.Strategy, describeSource(cfg), s.FeeBps,
		s.StartUTC.Format("2006-01-02 15:04"), s.EndUTC.Format("2006-01-02 15:04"))
	fmt.Printf("Final equity=%.4f Total return=%.2f%% Buy&hold=%.2f%%\n",
		s.FinalEquity, s.TotalReturn*100, s.BuyHoldReturn*100)
	fmt.Printf("Max drawdown=%.2f%% Trades=%d Fees=%.4f Exposure=%.1f%%\n",
		s.MaxDrawdown*100, s.Trades, s.TotalFees, s.Exposure*100)
	return nil
}

// applyStrategyFlags layers --strategy-file, then --strategy/--param, over
// the config's strategy block.
func applyStrategyFlags(c *cli.Context, cfg *config.Config) error {
	if path := c.String("strategy-file"); path != "" {
		loaded, err := config.LoadStrategyFile(path)
		if err != nil {
			return err
		}
		cfg.Strategy = config.MergeStrategy(cfg.Strategy, loaded)
	}

	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}
	if c.IsSet("strategy") || len(params) > 0 {
		override := config.StrategyConfig{Name: c.String("strategy"), Params: params}
		if override.Name != "" && override.Name != cfg.Strategy.Name {
			// A strategy picked on the command line starts from its catalog defaults.
			override = config.MergeStrategy(config.StrategyConfig{
				Name:   override.Name,
				Params: defaultParams(override.Name),
			}, override)
		}
		cfg.Strategy = config.MergeStrategy(cfg.Strategy, override)
	}
	if cfg.Strategy.Name == "" {
		return fmt.Errorf("no strategy: pass --strategy, --strategy-file or --config")
	}
	return nil
}

// defaultParams returns the catalog defaults for kind, or nil for an unknown kind.
func defaultParams(kind string) map[string]any {
	k, err := strategy.ParseKind(kind)
	if err != nil {
		return nil
	}
	for _, info := range strategy.Catalog() {
		if info.Kind != k {
			continue
		}
		out := make(map[string]any, len(info.Parameters))
		for _, p := range info.Parameters {
			out[p.Name] = p.Default
		}
		return out
	}
	return nil
}
