package analysis

import (
	"fmt"
	"sort"

	"signal-backtest/internal/backtest"
	"signal-backtest/internal/model"
	"signal-backtest/internal/strategy"
)

type RankedStrategy struct {
	Rank int
	Kind strategy.Kind
	Stats
	Result *backtest.Result
}

// RankStrategies backtests every candidate on the same series and sorts
// descending by final equity. Ties keep candidate order.
func RankStrategies(series model.Series, candidates []strategy.Strategy, feeBps float64) ([]RankedStrategy, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no strategies to rank", model.ErrInvalidStrategy)
	}

	engine := backtest.New()
	out := make([]RankedStrategy, 0, len(candidates))
	for _, c := range candidates {
		res, err := engine.Run(series, c, feeBps)
		if err != nil {
			name := "<nil>"
			if c != nil {
				name = c.Name()
			}
			return nil, fmt.Errorf("rank %s: %w", name, err)
		}
		out = append(out, RankedStrategy{Kind: c.Kind(), Stats: Summarize(res), Result: res})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalEquity > out[j].FinalEquity
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// DefaultCandidates is every strategy kind with its catalog defaults.
func DefaultCandidates() ([]strategy.Strategy, error) {
	catalog := strategy.Catalog()
	out := make([]strategy.Strategy, 0, len(catalog))
	for _, info := range catalog {
		s, err := strategy.Default(info.Kind)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
