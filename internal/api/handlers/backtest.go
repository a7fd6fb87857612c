package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signal-backtest/internal/analysis"
	"signal-backtest/internal/api/models"
	"signal-backtest/internal/backtest"
	"signal-backtest/internal/data"
	"signal-backtest/internal/metrics"
	"signal-backtest/internal/model"
	"signal-backtest/internal/strategy"
)

const defaultFeeBps = 5.0

// ExchangeSource resolves an exchange client by name.
type ExchangeSource interface {
	Get(name string) (data.Exchange, error)
}

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	exchanges ExchangeSource
	store     *ResultStore
	metrics   *metrics.Metrics
	log       zerolog.Logger
	engine    *backtest.Engine
	maxBars   int
	timeout   time.Duration
}

// NewBacktestHandler creates a new backtest handler. m may be nil.
func NewBacktestHandler(exchanges ExchangeSource, store *ResultStore, m *metrics.Metrics, log zerolog.Logger, maxBars int) *BacktestHandler {
	return &BacktestHandler{
		exchanges: exchanges,
		store:     store,
		metrics:   m,
		log:       log.With().Str("component", "backtest_handler").Logger(),
		engine:    backtest.New(),
		maxBars:   maxBars,
		timeout:   30 * time.Second,
	}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	strat, err := strategy.New(req.Strategy.Name, req.Strategy.Params)
	if err != nil {
		writeError(c, err)
		return
	}

	series, err := h.fetchSeries(c.Request.Context(), req.DataSource)
	if err != nil {
		writeError(c, err)
		return
	}
	series = series.Tail(req.Options.LimitBars)

	result, err := h.run(series, strat, feeOrDefault(req.FeeBps))
	if err != nil {
		writeError(c, err)
		return
	}

	id := h.store.Put(result)
	h.log.Info().
		Str("id", id).
		Str("strategy", result.Strategy).
		Int("bars", len(result.Ledger)).
		Float64("final_equity", result.FinalEquity).
		Msg("backtest complete")

	response := models.BacktestResponse{
		ID:      id,
		Status:  "completed",
		Summary: buildSummary(result),
	}
	if req.Options.IncludeLedger {
		response.Ledger = buildLedger(result)
	}
	c.JSON(http.StatusOK, response)
}

// GetLedger handles GET /api/v1/backtest/:id/ledger. ?format=csv returns the
// spreadsheet export instead of JSON.
func (h *BacktestHandler) GetLedger(c *gin.Context) {
	id := c.Param("id")
	result, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("no backtest result with id %q (results expire)", id),
			},
		})
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ledger-"+id+".csv"))
		c.Status(http.StatusOK)
		if err := backtest.WriteLedger(c.Writer, result.Ledger); err != nil {
			h.log.Error().Err(err).Str("id", id).Msg("write ledger csv")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "ledger": buildLedger(result)})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	// Fetch data once
	series, err := h.fetchSeries(c.Request.Context(), req.DataSource)
	if err != nil {
		writeError(c, err)
		return
	}

	fee := feeOrDefault(req.FeeBps)
	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, variation := range req.Variations {
		out := models.ComparisonResult{Name: variation.Name}
		strat, err := strategy.New(variation.Strategy.Name, variation.Strategy.Params)
		if err == nil {
			var result *backtest.Result
			result, err = h.run(series, strat, fee)
			if err == nil {
				summary := buildSummary(result)
				out.Summary = &summary
			}
		}
		if err != nil {
			_, detail := errorDetail(err)
			out.Error = &detail
		}
		comparison = append(comparison, out)
	}

	c.JSON(http.StatusOK, models.CompareBacktestResponse{
		Comparison: comparison,
	})
}

// Helper methods

func (h *BacktestHandler) run(series model.Series, strat strategy.Strategy, feeBps float64) (*backtest.Result, error) {
	start := time.Now()
	result, err := h.engine.Run(series, strat, feeBps)
	h.metrics.ObserveBacktest(string(strat.Kind()), start, err)
	return result, err
}

func (h *BacktestHandler) fetchSeries(ctx context.Context, ds models.DataSourceConfig) (model.Series, error) {
	return fetchSeries(ctx, h.exchanges, ds, h.maxBars, h.timeout)
}

func fetchSeries(ctx context.Context, exchanges ExchangeSource, ds models.DataSourceConfig, maxBars int, timeout time.Duration) (model.Series, error) {
	switch ds.Type {
	case "inline":
		if maxBars > 0 && len(ds.Candles) > maxBars {
			return nil, fmt.Errorf("%w: %d inline candles exceeds the limit of %d", model.ErrInvalidParameter, len(ds.Candles), maxBars)
		}
		return model.Series(ds.Candles), nil
	case "exchange":
		if exchanges == nil {
			return nil, errors.New("exchange data source is not configured")
		}
		ex, err := exchanges.Get(ds.Exchange)
		if err != nil {
			return nil, err
		}
		timeframe := ds.Timeframe
		if timeframe == "" {
			timeframe = "1h"
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return ex.FetchOHLCV(ctx, ds.Symbol, timeframe, ds.Limit)
	}
	return nil, fmt.Errorf("%w: unsupported data source type %q", model.ErrInvalidParameter, ds.Type)
}

func feeOrDefault(fee *float64) float64 {
	if fee == nil {
		return defaultFeeBps
	}
	return *fee
}

func buildSummary(result *backtest.Result) models.BacktestSummary {
	s := analysis.Summarize(result)
	return models.BacktestSummary{
		Strategy:  s.Strategy,
		FeeBps:    s.FeeBps,
		TotalBars: s.Bars,
		BacktestWindow: models.TimeWindow{
			Start: s.StartUTC,
			End:   s.EndUTC,
		},
		FinalEquity:   s.FinalEquity,
		TotalReturn:   s.TotalReturn,
		BuyHoldReturn: s.BuyHoldReturn,
		MaxDrawdown:   s.MaxDrawdown,
		Trades:        s.Trades,
		TotalFees:     s.TotalFees,
		Exposure:      s.Exposure,
		LongBars:      s.LongBars,
		ShortBars:     s.ShortBars,
	}
}

func buildLedger(result *backtest.Result) []models.LedgerRow {
	rows := make([]models.LedgerRow, len(result.Ledger))
	if len(result.Ledger) == 0 {
		return rows
	}
	firstClose := result.Ledger[0].Close
	for i, r := range result.Ledger {
		rows[i] = models.LedgerRow{
			Index:        r.Index,
			Timestamp:    r.Timestamp,
			Time:         r.Time,
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			Signal:       int(r.Signal),
			Position:     int(r.Position),
			Action:       string(r.Action),
			Return:       r.Return,
			Fee:          r.Fee,
			NetReturn:    r.NetReturn,
			Equity:       r.Equity,
			ScaledEquity: r.ScaledEquity(firstClose),
		}
	}
	return rows
}
