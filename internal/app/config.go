package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	// DashboardTimeout bounds building the page and its CSV/PNG exports.
	DashboardTimeout time.Duration `envconfig:"DASHBOARD_TIMEOUT" default:"2s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// RedisAddr enables the dashboard cache and the warm-up worker. Empty disables both.
	RedisAddr string        `envconfig:"REDIS_ADDR" default:""`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	SalesTarget int64 `envconfig:"SALES_TARGET" default:"7000000"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	WarmupCron        string `envconfig:"WARMUP_CRON" default:"@every 5m"`
	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is applied first; variables already set win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.SalesTarget <= 0 {
		return errors.New("sales target must be positive")
	}
	if c.DashboardTimeout <= 0 {
		return errors.New("dashboard timeout must be positive")
	}
	if c.AppRequestTimeout > 0 && c.DashboardTimeout > c.AppRequestTimeout {
		return errors.New("dashboard timeout must not exceed the request timeout")
	}
	if c.CacheTTL < 0 {
		return errors.New("cache ttl must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.RedisAddr != ""
}
