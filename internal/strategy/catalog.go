package strategy

// ParameterInfo describes one strategy parameter.
type ParameterInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"` // "int" or "float"
	Description string  `json:"description"`
	Default     float64 `json:"default"`
}

// Info describes a strategy for listings.
type Info struct {
	Kind        Kind            `json:"kind"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// Catalog lists the available strategies in display order.
func Catalog() []Info {
	return []Info{
		{
			Kind:        KindEMACrossover,
			DisplayName: "EMA Crossover",
			Description: "Long while the fast EMA of closes is above the slow EMA, short otherwise.",
			Parameters: []ParameterInfo{
				{Name: "fast_span", Type: "int", Description: "Fast EMA span (bars)", Default: 9},
				{Name: "slow_span", Type: "int", Description: "Slow EMA span (bars)", Default: 21},
			},
		},
		{
			Kind:        KindRSI2,
			DisplayName: "RSI2",
			Description: "Mean reversion on a 2-bar RSI: long below 10, short above 90.",
			Parameters:  []ParameterInfo{},
		},
		{
			Kind:        KindBollinger,
			DisplayName: "Bollinger",
			Description: "Long below the lower band, short above the upper band.",
			Parameters: []ParameterInfo{
				{Name: "period", Type: "int", Description: "Rolling window (bars, >= 2)", Default: 20},
				{Name: "std_multiplier", Type: "float", Description: "Band width in sample standard deviations (> 0)", Default: 2},
			},
		},
		{
			Kind:        KindBreakout,
			DisplayName: "Breakout",
			Description: "Long above the prior Lookback-bar high, short below the prior Lookback-bar low.",
			Parameters: []ParameterInfo{
				{Name: "lookback", Type: "int", Description: "Channel length (bars, >= 1)", Default: 20},
			},
		},
	}
}
