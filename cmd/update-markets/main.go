package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"signal-backtest/internal/data"
	"signal-backtest/internal/logging"
)

func main() {
	var (
		exchange   = flag.String("exchange", "binance", "Exchange to list (binance or bybit)")
		outputPath = flag.String("output", "", "Output file path (default: ./data/markets_<exchange>.json)")
		seedFile   = flag.String("seed", "", "Path to an existing markets file to compare against (default: the output file)")
		quote      = flag.String("quote", "", "Only keep markets quoted in this asset, e.g. USDT")
		timeout    = flag.Duration("timeout", 30*time.Second, "Request timeout")
	)
	flag.Parse()

	log := logging.New(os.Getenv("LOG_LEVEL"))

	if *outputPath == "" {
		*outputPath = data.DefaultMarketsPath(*exchange)
	}

	ex, err := data.NewExchange(*exchange, data.Options{Logger: &log})
	if err != nil {
		log.Fatal().Err(err).Msg("create exchange client")
	}
	lister, ok := ex.(data.MarketLister)
	if !ok {
		log.Fatal().Str("exchange", ex.Name()).Msg("exchange cannot list markets")
	}

	// Load existing markets as seed if provided
	var existing []data.Market
	seedPath := *seedFile
	if seedPath == "" {
		seedPath = *outputPath
	}
	if list, err := data.LoadMarkets(seedPath); err == nil {
		existing = list.Markets
		fmt.Printf("Loaded %d existing markets from %s\n", len(existing), seedPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("Fetching markets from %s...\n", ex.Name())
	fetched, err := lister.Markets(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch markets")
	}

	markets := dedupeMarkets(fetched)
	list := &data.MarketList{
		Exchange:  ex.Name(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Markets:   markets,
	}
	if *quote != "" {
		list.Markets = list.FilterQuote(*quote)
	}

	if len(existing) > 0 {
		added, delisted := diffMarkets(existing, list.Markets)
		fmt.Printf("%d new, %d no longer trading\n", len(added), len(delisted))
		for _, id := range delisted {
			fmt.Printf("  - %s\n", id)
		}
	}

	// Save to file
	if err := data.SaveMarkets(list, *outputPath); err != nil {
		log.Fatal().Err(err).Msg("save markets")
	}

	fmt.Printf("Saved %d markets to %s\n", len(list.Markets), *outputPath)
}

// dedupeMarkets keeps one entry per exchange ID, sorted by symbol.
func dedupeMarkets(markets []data.Market) []data.Market {
	seen := make(map[string]bool, len(markets))
	out := make([]data.Market, 0, len(markets))
	for _, m := range markets {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	data.SortMarkets(out)
	return out
}

// diffMarkets counts IDs present only in fresh (added) and only in seed (delisted).
func diffMarkets(seed, fresh []data.Market) (added, delisted []string) {
	old := make(map[string]bool, len(seed))
	for _, m := range seed {
		old[m.ID] = true
	}
	cur := make(map[string]bool, len(fresh))
	for _, m := range fresh {
		cur[m.ID] = true
		if !old[m.ID] {
			added = append(added, m.ID)
		}
	}
	for _, m := range seed {
		if !cur[m.ID] {
			delisted = append(delisted, m.ID)
		}
	}
	return added, delisted
}
