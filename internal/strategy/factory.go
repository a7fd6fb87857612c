package strategy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"signal-backtest/internal/model"
)

// Params is the loosely typed parameter bag that arrives from YAML configs,
// JSON requests and command-line flags. New converts it into a typed strategy.
type Params map[string]any

// ParseKind accepts canonical kinds ("ema_crossover") as well as the display
// names shown in listings ("EMA Crossover", "RSI2").
func ParseKind(name string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "ema_crossover", "ema_cross", "ema":
		return KindEMACrossover, nil
	case "rsi2", "rsi_2", "rsi(2)":
		return KindRSI2, nil
	case "bollinger", "bollinger_bands", "bbands":
		return KindBollinger, nil
	case "breakout", "donchian":
		return KindBreakout, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidStrategy, name)
}

// New builds the typed strategy named by kind from params. Every parameter the
// kind declares is required; a missing one is reported by its key.
func New(kind string, params Params) (Strategy, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}

	var s Strategy
	switch k {
	case KindEMACrossover:
		fast, err := intParam(params, k, "fast_span", "fast")
		if err != nil {
			return nil, err
		}
		slow, err := intParam(params, k, "slow_span", "slow")
		if err != nil {
			return nil, err
		}
		s = EMACrossover{FastSpan: fast, SlowSpan: slow}
	case KindRSI2:
		s = RSI2{}
	case KindBollinger:
		period, err := intParam(params, k, "period")
		if err != nil {
			return nil, err
		}
		mult, err := floatParam(params, k, "std_multiplier", "std_mult")
		if err != nil {
			return nil, err
		}
		s = Bollinger{Period: period, StdMultiplier: mult}
	case KindBreakout:
		lookback, err := intParam(params, k, "lookback")
		if err != nil {
			return nil, err
		}
		s = Breakout{Lookback: lookback}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns kind with the parameter defaults from Catalog.
func Default(kind Kind) (Strategy, error) {
	for _, info := range Catalog() {
		if info.Kind != kind {
			continue
		}
		params := Params{}
		for _, p := range info.Parameters {
			params[p.Name] = p.Default
		}
		return New(string(kind), params)
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidStrategy, kind)
}

// lookup returns the first key present; keys[0] is the canonical name.
func lookup(params Params, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := params[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func floatParam(params Params, kind Kind, keys ...string) (float64, error) {
	raw, ok := lookup(params, keys...)
	if !ok {
		return 0, fmt.Errorf("%w: %s requires parameter %q", model.ErrInvalidParameter, kind, keys[0])
	}
	v, err := toFloat(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s parameter %q: %v", model.ErrInvalidParameter, kind, keys[0], err)
	}
	return v, nil
}

func intParam(params Params, kind Kind, keys ...string) (int, error) {
	v, err := floatParam(params, kind, keys...)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s parameter %q must be an integer, got %v", model.ErrInvalidParameter, kind, keys[0], v)
	}
	return int(v), nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}
