package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"signal-backtest/internal/alert"
	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/notify"
)

var alertCommand = &cli.Command{
	Name:  "alert",
	Usage: "poll the last price and notify when it crosses a threshold",
	UsageText: "cli alert --symbol BTC/USDT --upper 75000 --lower 60000\n" +
		"TELEGRAM_TOKEN and TELEGRAM_CHAT_ID may be set in the environment or a .env file.",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to YAML config"},
		&cli.StringFlag{Name: "exchange", Usage: "binance or bybit"},
		&cli.StringFlag{Name: "symbol", Usage: "market symbol, e.g. BTC/USDT"},
		&cli.Float64Flag{Name: "upper", Usage: "alert when the price is at or above this level"},
		&cli.Float64Flag{Name: "lower", Usage: "alert when the price is at or below this level"},
		&cli.DurationFlag{Name: "interval", Usage: "polling interval (default 5s)"},
		&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file with Telegram credentials"},
	},
	Action: runAlert,
}

func runAlert(c *cli.Context) error {
	log := newLogger()

	if err := loadEnvFile(c.String("env-file")); err != nil {
		return err
	}

	cfg, err := alertConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAlert(); err != nil {
		return err
	}

	ex, err := data.NewExchange(cfg.Exchange, data.Options{Logger: &log})
	if err != nil {
		return err
	}
	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	w, err := alert.NewWatcher(alert.Config{
		Symbol:     cfg.Symbol,
		Thresholds: cfg.Alert.Thresholds(),
		Interval:   cfg.Alert.Interval,
	}, ex, notifier, log.With().Str("component", "alert").Str("symbol", cfg.Symbol).Logger(), nil)
	if err != nil {
		return err
	}

	events := make(chan alert.Event)
	go func() {
		for ev := range events {
			fmt.Printf("%s %s\n", ev.At.Format("2006-01-02 15:04:05"), ev.Message())
		}
	}()
	err = w.Run(c.Context, events)
	close(events)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func alertConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadUnchecked(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet("exchange") {
		cfg.Exchange = c.String("exchange")
	}
	if c.IsSet("symbol") {
		cfg.Symbol = c.String("symbol")
	}
	if c.IsSet("upper") {
		cfg.Alert.Upper = alert.Float(c.Float64("upper"))
	}
	if c.IsSet("lower") {
		cfg.Alert.Lower = alert.Float(c.Float64("lower"))
	}
	if c.IsSet("interval") {
		cfg.Alert.Interval = c.Duration("interval")
	}
	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	}
	if cfg.Telegram.ChatID == 0 {
		if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
			}
			cfg.Telegram.ChatID = id
		}
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// loadEnvFile loads path into the environment. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// newNotifier returns a Telegram notifier, or a log-only one when no
// credentials are configured.
func newNotifier(cfg *config.Config, log zerolog.Logger) (notify.Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		log.Warn().Msg("telegram credentials not set, alerts will only be logged")
		return notify.NewLog(log), nil
	}
	return notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
}
