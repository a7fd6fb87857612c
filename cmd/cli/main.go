package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"signal-backtest/internal/logging"
)

var logLevel string

func newApp() *cli.App {
	return &cli.App{
		Name:  "cli",
		Usage: "backtest trading signals on exchange candles and watch price thresholds",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Value:       "info",
				Usage:       "debug, info, warn or error",
				EnvVars:     []string{"LOG_LEVEL"},
				Destination: &logLevel,
			},
		},
		Commands: []*cli.Command{
			backtestCommand,
			rankCommand,
			strategiesCommand,
			alertCommand,
		},
	}
}

func main() {
	app := newApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return logging.New(logLevel)
}
