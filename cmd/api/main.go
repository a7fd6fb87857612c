package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"signal-backtest/internal/api"
	"signal-backtest/internal/api/handlers"
	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/logging"
	"signal-backtest/internal/metrics"
)

func main() {
	configFile := flag.String("config", "", "optional server config file (yaml, json or toml)")
	flag.Parse()

	// Values already in the environment win over .env.
	_ = godotenv.Load()

	cfg, err := config.LoadServer(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load server config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Component(logging.New(cfg.LogLevel), "api")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Server, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if wd, err := os.Getwd(); err == nil {
		log.Info().Str("working_directory", wd).Str("preset_dir", cfg.PresetDir).Msg("starting")
	}

	// Set up Gin router
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	cache, closeCache := newCache(ctx, cfg, log)
	defer closeCache()

	pool := data.NewPool(data.Options{
		RequestsPerSecond: cfg.ExchangeRPS,
		Logger:            &log,
		Metrics:           m,
	}, cache)

	router := api.NewRouter(api.Options{
		Exchanges:  pool,
		Store:      handlers.NewResultStore(cfg.ResultTTL, 0),
		Metrics:    m,
		Logger:     log,
		PresetDir:  cfg.PresetDir,
		MarketsDir: cfg.MarketsDir,
		StaticDir:  cfg.StaticDir,
		MaxBars:    cfg.MaxBars,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCache prefers Redis when REDIS_ADDR is set and reachable, otherwise an
// in-process TTL cache swept in the background.
func newCache(ctx context.Context, cfg config.Server, log zerolog.Logger) (data.Cache, func()) {
	if cfg.CacheTTL <= 0 {
		log.Info().Msg("candle cache disabled")
		return nil, func() {}
	}

	if cfg.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := data.DialRedis(dialCtx, cfg.RedisAddr)
		cancel()
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("using redis candle cache")
			return data.NewRedisCache(client, cfg.CacheTTL), func() { _ = client.Close() }
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to memory cache")
	}

	mem := data.NewMemoryCache(cfg.CacheTTL)
	go mem.Cleanup(ctx, cfg.CacheTTL)
	log.Info().Dur("ttl", cfg.CacheTTL).Msg("using in-memory candle cache")
	return mem, func() {}
}
