package model

import "errors"

// Error kinds returned by the indicator, strategy and backtest packages.
// Callers match them with errors.Is; the wrapped message carries the detail.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidStrategy  = errors.New("invalid strategy")
	ErrEmptySeries      = errors.New("empty series")
)
