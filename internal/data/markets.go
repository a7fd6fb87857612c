package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bytedance/sonic"
)

// Market is a spot trading pair as listed by an exchange.
type Market struct {
	Symbol   string `json:"symbol"` // unified form, e.g. "BTC/USDT"
	ID       string `json:"id"`     // exchange form, e.g. "BTCUSDT"
	Base     string `json:"base"`
	Quote    string `json:"quote"`
	Exchange string `json:"exchange"`
}

// MarketList is the on-disk symbol listing for one exchange.
type MarketList struct {
	Exchange  string   `json:"exchange"`
	UpdatedAt string   `json:"updated_at"` // ISO 8601 timestamp
	Markets   []Market `json:"markets"`
}

// FilterQuote keeps markets quoted in quote. An empty quote keeps everything.
func (l *MarketList) FilterQuote(quote string) []Market {
	if quote == "" {
		return l.Markets
	}
	out := make([]Market, 0, len(l.Markets))
	for _, m := range l.Markets {
		if m.Quote == quote {
			out = append(out, m)
		}
	}
	return out
}

// SortMarkets orders markets by unified symbol.
func SortMarkets(markets []Market) {
	sort.Slice(markets, func(i, j int) bool { return markets[i].Symbol < markets[j].Symbol })
}

// LoadMarkets loads a market list from a JSON file
func LoadMarkets(filePath string) (*MarketList, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read markets file: %w", err)
	}

	var list MarketList
	if err := sonic.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse markets file: %w", err)
	}
	return &list, nil
}

// SaveMarkets saves a market list to a JSON file
func SaveMarkets(list *MarketList, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := sonic.ConfigStd.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal markets: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write markets file: %w", err)
	}
	return nil
}

// DefaultMarketsPath returns the default path for an exchange's markets file.
func DefaultMarketsPath(exchange string) string {
	if path := os.Getenv("MARKETS_FILE"); path != "" {
		return path
	}
	return filepath.Join(".", "data", "markets_"+exchange+".json")
}
