package models

import "signal-backtest/internal/model"

// BacktestRequest represents the request body for running a backtest
type BacktestRequest struct {
	DataSource DataSourceConfig `json:"data_source" binding:"required"`
	Strategy   StrategyConfig   `json:"strategy" binding:"required"`
	FeeBps     *float64         `json:"fee_bps,omitempty"` // default: 5
	Options    BacktestOptions  `json:"options,omitempty"`
}

// DataSourceConfig defines where candles come from
type DataSourceConfig struct {
	Type string `json:"type" binding:"required,oneof=exchange inline"`

	// type=exchange
	Exchange  string `json:"exchange,omitempty"`  // binance | bybit
	Symbol    string `json:"symbol,omitempty"`    // e.g. "BTC/USDT"
	Timeframe string `json:"timeframe,omitempty"` // 1m..1d, default 1h
	Limit     int    `json:"limit,omitempty"`     // default 500, max 1000

	// type=inline
	Candles []model.Candle `json:"candles,omitempty"`
}

// StrategyConfig defines a strategy and its parameters
type StrategyConfig struct {
	Name   string         `json:"name" binding:"required"`
	Params map[string]any `json:"params,omitempty"`
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	LimitBars     int  `json:"limit_bars,omitempty"`     // 0 = all; keeps the most recent bars
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// CompareBacktestRequest runs several strategies over one data fetch
type CompareBacktestRequest struct {
	DataSource DataSourceConfig    `json:"data_source" binding:"required"`
	FeeBps     *float64            `json:"fee_bps,omitempty"`
	Variations []BacktestVariation `json:"variations" binding:"required,min=1,dive"`
}

// BacktestVariation defines a variation to test
type BacktestVariation struct {
	Name     string         `json:"name" binding:"required"`
	Strategy StrategyConfig `json:"strategy" binding:"required"`
}

// RankRequest ranks every strategy, with default parameters, on one market
type RankRequest struct {
	Exchange  string   `form:"exchange"`
	Symbol    string   `form:"symbol" binding:"required"`
	Timeframe string   `form:"timeframe"`
	Limit     int      `form:"limit"`
	FeeBps    *float64 `form:"fee_bps"`
	Top       int      `form:"top"` // default: all
}
