// Package api wires the HTTP handlers into a gin engine.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signal-backtest/internal/api/handlers"
	"signal-backtest/internal/api/middleware"
	"signal-backtest/internal/metrics"
)

// Options configures NewRouter. Zero values disable the optional parts.
type Options struct {
	Exchanges   handlers.ExchangeSource
	Store       *handlers.ResultStore
	Metrics     *metrics.Metrics // nil disables /metrics
	Logger      zerolog.Logger
	PresetDir   string
	MarketsDir  string
	StaticDir   string
	MaxBars     int
	CORSOrigins []string
}

// NewRouter builds the API engine. gin's mode must be set by the caller.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	store := opts.Store
	if store == nil {
		store = handlers.NewResultStore(0, 0)
	}

	router := gin.New()
	router.Use(middleware.CORS(opts.CORSOrigins...))
	router.Use(middleware.Logger(log.With().Str("component", "http").Logger()))
	router.Use(middleware.ErrorHandler(log))

	backtestHandler := handlers.NewBacktestHandler(opts.Exchanges, store, opts.Metrics, log, opts.MaxBars)
	strategyHandler := handlers.NewStrategyHandler()
	presetHandler := handlers.NewPresetHandler(opts.PresetDir, log)
	marketHandler := handlers.NewMarketHandler(opts.Exchanges, opts.MarketsDir, log)
	rankHandler := handlers.NewRankHandler(opts.Exchanges, opts.Metrics, log)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.GET("/backtest/:id/ledger", backtestHandler.GetLedger)
		v1.POST("/backtest/compare", backtestHandler.CompareBacktests)

		v1.GET("/strategies", strategyHandler.ListStrategies)
		v1.GET("/presets", presetHandler.ListPresets)

		v1.GET("/rank", rankHandler.RankStrategies)

		v1.GET("/exchanges", marketHandler.ListExchanges)
		v1.GET("/markets", marketHandler.ListMarkets)
	}

	serveStatic(router, opts.StaticDir, log)
	return router
}

// serveStatic serves a built single-page app from dir, falling back to
// index.html for every non-API path.
func serveStatic(router *gin.Engine, dir string, log zerolog.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(dir); err != nil {
		log.Info().Str("dir", dir).Msg("static directory not found, skipping static file serving")
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	index := filepath.Join(dir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(index)
	})
	log.Info().Str("dir", dir).Msg("serving static files")
}
