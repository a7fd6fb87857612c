package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"signal-backtest/internal/alert"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
	"signal-backtest/internal/strategy"

	"gopkg.in/yaml.v3"
)

const (
	DefaultExchange      = "binance"
	DefaultSymbol        = "BTC/USDT"
	DefaultTimeframe     = "1h"
	DefaultFeeBps        = 5.0
	DefaultAlertInterval = 5 * time.Second
)

// Config is the on-disk run configuration shape (YAML).
type Config struct {
	Exchange  string `yaml:"exchange"`
	Symbol    string `yaml:"symbol"`
	Timeframe string `yaml:"timeframe"`
	Limit     int    `yaml:"limit"`
	// DataFile replaces the exchange fetch with a local .csv or .json file.
	DataFile string   `yaml:"data_file"`
	FeeBps   *float64 `yaml:"fee_bps"`

	// Optional: load the strategy from a separate YAML (e.g. examples/strategies/*.yaml).
	// If both StrategyFile and Strategy are provided, Strategy overrides StrategyFile.
	StrategyFile string         `yaml:"strategy_file"`
	Strategy     StrategyConfig `yaml:"strategy"`

	Alert    AlertConfig    `yaml:"alert"`
	Telegram TelegramConfig `yaml:"telegram"`
	Cache    CacheConfig    `yaml:"cache"`
	Output   OutputConfig   `yaml:"output"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type AlertConfig struct {
	Upper    *float64      `yaml:"upper"`
	Lower    *float64      `yaml:"lower"`
	Interval time.Duration `yaml:"interval"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

type OutputConfig struct {
	CSV string `yaml:"csv"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads, merges and applies defaults, but does not validate.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If strategy_file is set, load it and merge in any explicit overrides from c.Strategy.
	if c.StrategyFile != "" {
		strategyPath := c.StrategyFile
		if !filepath.IsAbs(strategyPath) {
			// Prefer paths relative to the config file, falling back to cwd.
			cand := filepath.Join(filepath.Dir(path), strategyPath)
			if _, err := os.Stat(cand); err == nil {
				strategyPath = cand
			}
		}
		loaded, err := LoadStrategyFile(strategyPath)
		if err != nil {
			return nil, err
		}
		c.Strategy = MergeStrategy(loaded, c.Strategy)
	}
	c.ApplyDefaults()
	return &c, nil
}

// ApplyDefaults fills unset fields with the defaults used by the CLI.
func (c *Config) ApplyDefaults() {
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.Symbol == "" {
		c.Symbol = DefaultSymbol
	}
	if c.Timeframe == "" {
		c.Timeframe = DefaultTimeframe
	}
	if c.Limit == 0 {
		c.Limit = data.DefaultLimit
	}
	if c.FeeBps == nil {
		fee := DefaultFeeBps
		c.FeeBps = &fee
	}
	if c.Alert.Interval == 0 {
		c.Alert.Interval = DefaultAlertInterval
	}
}

// Fee returns fee_bps, or the default when unset.
func (c *Config) Fee() float64 {
	if c.FeeBps == nil {
		return DefaultFeeBps
	}
	return *c.FeeBps
}

// Validate checks everything a backtest run needs.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	if _, err := c.Strategy.Build(); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}
	if fee := c.Fee(); fee < 0 || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return fmt.Errorf("%w: fee_bps must be >= 0, got %v", model.ErrInvalidParameter, fee)
	}
	return c.validateSource()
}

// ValidateAlert checks everything the price alert needs.
func (c *Config) ValidateAlert() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := data.NormalizeSymbol(c.Symbol); err != nil {
		return err
	}
	if _, err := data.NewExchange(c.Exchange, data.Options{}); err != nil {
		return err
	}
	if c.Alert.Interval <= 0 {
		return fmt.Errorf("%w: alert.interval must be positive", model.ErrInvalidParameter)
	}
	return c.Alert.Thresholds().Validate()
}

func (c *Config) validateSource() error {
	if c.DataFile != "" {
		return nil
	}
	if _, err := data.NewExchange(c.Exchange, data.Options{}); err != nil {
		return err
	}
	if _, err := data.NormalizeSymbol(c.Symbol); err != nil {
		return err
	}
	return data.ValidateTimeframe(c.Timeframe)
}

// Build constructs the typed strategy.
func (s StrategyConfig) Build() (strategy.Strategy, error) {
	return strategy.New(s.Name, strategy.Params(s.Params))
}

func (a AlertConfig) Thresholds() alert.Thresholds {
	return alert.Thresholds{Upper: a.Upper, Lower: a.Lower}
}

type strategyFileWrapper struct {
	Strategy StrategyConfig `yaml:"strategy"`
}

// LoadStrategyFile reads a YAML file holding a single strategy block.
func LoadStrategyFile(path string) (StrategyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return StrategyConfig{}, err
	}
	var w strategyFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return StrategyConfig{}, err
	}
	return w.Strategy, nil
}

// MergeStrategy overlays override onto base. A different strategy name
// replaces the parameters wholesale; the same (or empty) name overlays
// individual parameters.
func MergeStrategy(base, override StrategyConfig) StrategyConfig {
	if override.Name != "" && override.Name != base.Name {
		return override
	}
	out := StrategyConfig{Name: base.Name, Params: map[string]any{}}
	for k, v := range base.Params {
		out.Params[k] = v
	}
	for k, v := range override.Params {
		out.Params[k] = v
	}
	return out
}
