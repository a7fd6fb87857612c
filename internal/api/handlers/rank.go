package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signal-backtest/internal/analysis"
	"signal-backtest/internal/api/models"
	"signal-backtest/internal/metrics"
)

// RankHandler handles ranking-related requests
type RankHandler struct {
	exchanges ExchangeSource
	metrics   *metrics.Metrics
	log       zerolog.Logger
	timeout   time.Duration
}

// NewRankHandler creates a new rank handler
func NewRankHandler(exchanges ExchangeSource, m *metrics.Metrics, log zerolog.Logger) *RankHandler {
	return &RankHandler{
		exchanges: exchanges,
		metrics:   m,
		log:       log.With().Str("component", "rank_handler").Logger(),
		timeout:   30 * time.Second,
	}
}

// RankStrategies handles GET /api/v1/rank
func (h *RankHandler) RankStrategies(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	ds := models.DataSourceConfig{
		Type:      "exchange",
		Exchange:  req.Exchange,
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Limit:     req.Limit,
	}
	if ds.Timeframe == "" {
		ds.Timeframe = "1h"
	}
	series, err := fetchSeries(c.Request.Context(), h.exchanges, ds, 0, h.timeout)
	if err != nil {
		writeError(c, err)
		return
	}

	candidates, err := analysis.DefaultCandidates()
	if err != nil {
		writeError(c, err)
		return
	}

	start := time.Now()
	ranked, err := analysis.RankStrategies(series, candidates, feeOrDefault(req.FeeBps))
	for _, cand := range candidates {
		h.metrics.ObserveBacktest(string(cand.Kind()), start, err)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	// Apply limit
	if req.Top > 0 && req.Top < len(ranked) {
		ranked = ranked[:req.Top]
	}

	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{
			Rank:        r.Rank,
			Strategy:    r.Strategy,
			Kind:        string(r.Kind),
			FinalEquity: r.FinalEquity,
			TotalReturn: r.TotalReturn,
			MaxDrawdown: r.MaxDrawdown,
			Trades:      r.Trades,
			TotalFees:   r.TotalFees,
			Exposure:    r.Exposure,
		}
	}

	h.log.Info().
		Str("symbol", req.Symbol).
		Str("timeframe", ds.Timeframe).
		Int("bars", len(series)).
		Msg("ranked strategies")

	c.JSON(http.StatusOK, models.RankResponse{
		Exchange:  exchangeName(h.exchanges, req.Exchange),
		Symbol:    req.Symbol,
		Timeframe: ds.Timeframe,
		Bars:      len(series),
		Rankings:  rankings,
	})
}

func exchangeName(src ExchangeSource, name string) string {
	ex, err := src.Get(name)
	if err != nil {
		return name
	}
	return ex.Name()
}
