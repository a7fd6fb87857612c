package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signal-backtest/internal/api/models"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
)

// MarketHandler serves exchange and symbol listings
type MarketHandler struct {
	exchanges ExchangeSource
	dir       string
	log       zerolog.Logger
}

// NewMarketHandler reads cached market files from dir (markets_<exchange>.json)
// and falls back to asking the exchange.
func NewMarketHandler(exchanges ExchangeSource, dir string, log zerolog.Logger) *MarketHandler {
	return &MarketHandler{
		exchanges: exchanges,
		dir:       dir,
		log:       log.With().Str("component", "market_handler").Logger(),
	}
}

// ListExchanges handles GET /api/v1/exchanges
func (h *MarketHandler) ListExchanges(c *gin.Context) {
	names := data.Exchanges()
	out := make([]models.ExchangeInfo, len(names))
	for i, name := range names {
		out[i] = models.ExchangeInfo{
			ID:         name,
			Timeframes: data.Timeframes,
			MaxLimit:   data.MaxLimit,
		}
	}
	c.JSON(http.StatusOK, gin.H{"exchanges": out})
}

// ListMarkets handles GET /api/v1/markets?exchange=binance&quote=USDT
func (h *MarketHandler) ListMarkets(c *gin.Context) {
	exchange := c.DefaultQuery("exchange", "binance")
	quote := c.Query("quote")

	list, err := h.loadMarkets(c.Request.Context(), exchange)
	if err != nil {
		writeError(c, err)
		return
	}

	markets := list.FilterQuote(quote)
	out := make([]models.MarketInfo, len(markets))
	for i, m := range markets {
		out[i] = models.MarketInfo{Symbol: m.Symbol, ID: m.ID, Base: m.Base, Quote: m.Quote}
	}
	c.JSON(http.StatusOK, gin.H{
		"exchange":   list.Exchange,
		"updated_at": list.UpdatedAt,
		"markets":    out,
	})
}

func (h *MarketHandler) loadMarkets(ctx context.Context, exchange string) (*data.MarketList, error) {
	ex, err := h.exchanges.Get(exchange)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(h.dir, "markets_"+ex.Name()+".json")
	list, err := data.LoadMarkets(path)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		h.log.Warn().Err(err).Str("path", path).Msg("load markets file")
	}

	lister, ok := unwrapExchange(ex).(data.MarketLister)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot list markets", model.ErrInvalidParameter, ex.Name())
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	markets, err := lister.Markets(ctx)
	if err != nil {
		return nil, err
	}
	data.SortMarkets(markets)
	return &data.MarketList{
		Exchange:  ex.Name(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Markets:   markets,
	}, nil
}

func unwrapExchange(ex data.Exchange) data.Exchange {
	if cached, ok := ex.(*data.CachedExchange); ok {
		return cached.Exchange
	}
	return ex
}
