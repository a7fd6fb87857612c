package models

import "time"

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID      string          `json:"id,omitempty"`
	Status  string          `json:"status"`
	Summary BacktestSummary `json:"summary"`
	Ledger  []LedgerRow     `json:"ledger,omitempty"`
}

// BacktestSummary contains aggregated backtest results
type BacktestSummary struct {
	Strategy       string     `json:"strategy"`
	FeeBps         float64    `json:"fee_bps"`
	TotalBars      int        `json:"total_bars"`
	BacktestWindow TimeWindow `json:"backtest_window"`
	FinalEquity    float64    `json:"final_equity"`
	TotalReturn    float64    `json:"total_return"`
	BuyHoldReturn  float64    `json:"buy_hold_return"`
	MaxDrawdown    float64    `json:"max_drawdown"`
	Trades         int        `json:"trades"`
	TotalFees      float64    `json:"total_fees"`
	Exposure       float64    `json:"exposure"`
	LongBars       int        `json:"long_bars"`
	ShortBars      int        `json:"short_bars"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LedgerRow represents one bar in the backtest ledger
type LedgerRow struct {
	Index     int       `json:"index"`
	Timestamp int64     `json:"timestamp"`
	Time      time.Time `json:"datetime"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Signal    int       `json:"signal"`
	Position  int       `json:"position"`
	Action    string    `json:"action"` // "LONG", "FLAT", "SHORT"
	Return    float64   `json:"return"`
	Fee       float64   `json:"fee"`
	NetReturn float64   `json:"net_return"`
	Equity    float64   `json:"equity"`
	// ScaledEquity is equity in units of the first close, for chart overlays.
	ScaledEquity float64 `json:"scaled_equity"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string           `json:"name"`
	Summary *BacktestSummary `json:"summary,omitempty"`
	Error   *ErrorDetail     `json:"error,omitempty"`
}

// RankResponse represents the response from ranking strategies
type RankResponse struct {
	Exchange  string    `json:"exchange"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Bars      int       `json:"bars"`
	Rankings  []Ranking `json:"rankings"`
}

// Ranking represents one ranked strategy
type Ranking struct {
	Rank        int     `json:"rank"`
	Strategy    string  `json:"strategy"`
	Kind        string  `json:"kind"`
	FinalEquity float64 `json:"final_equity"`
	TotalReturn float64 `json:"total_return"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Trades      int     `json:"trades"`
	TotalFees   float64 `json:"total_fees"`
	Exposure    float64 `json:"exposure"`
}

// PresetInfo represents a strategy preset file
type PresetInfo struct {
	ID       string         `json:"id"`
	File     string         `json:"file"`
	Strategy string         `json:"strategy"`
	Params   map[string]any `json:"params,omitempty"`
}

// ExchangeInfo describes a supported exchange
type ExchangeInfo struct {
	ID         string   `json:"id"`
	Timeframes []string `json:"timeframes"`
	MaxLimit   int      `json:"max_limit"`
}

// MarketInfo represents one tradable symbol
type MarketInfo struct {
	Symbol string `json:"symbol"`
	ID     string `json:"id"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
