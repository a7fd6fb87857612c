package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server holds the API server settings. Values come from the environment,
// optionally seeded by a config file.
type Server struct {
	Port           string
	Env            string
	StaticDir      string
	PresetDir      string
	MarketsDir     string
	LogLevel       string
	CacheTTL       time.Duration
	RedisAddr      string
	MetricsEnabled bool
	ExchangeRPS    float64
	MaxBars        int
	ResultTTL      time.Duration
}

func (s Server) Production() bool { return strings.EqualFold(s.Env, "production") }

// LoadServer reads API_* style settings. file may be empty.
func LoadServer(file string) (Server, error) {
	v := viper.New()
	v.SetDefault("api_port", "8080")
	v.SetDefault("api_env", "development")
	v.SetDefault("static_dir", "./web/dist")
	v.SetDefault("preset_dir", "./examples/strategies")
	v.SetDefault("markets_dir", "./data")
	v.SetDefault("log_level", "info")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("redis_addr", "")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("exchange_rps", 10)
	v.SetDefault("max_bars", 100000)
	v.SetDefault("result_ttl", "30m")

	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Server{}, err
		}
	}

	return Server{
		Port:           v.GetString("api_port"),
		Env:            v.GetString("api_env"),
		StaticDir:      v.GetString("static_dir"),
		PresetDir:      v.GetString("preset_dir"),
		MarketsDir:     v.GetString("markets_dir"),
		LogLevel:       v.GetString("log_level"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		RedisAddr:      v.GetString("redis_addr"),
		MetricsEnabled: v.GetBool("metrics_enabled"),
		ExchangeRPS:    v.GetFloat64("exchange_rps"),
		MaxBars:        v.GetInt("max_bars"),
		ResultTTL:      v.GetDuration("result_ttl"),
	}, nil
}
