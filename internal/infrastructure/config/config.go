package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Ledger storage
	DataDir        string `env:"LEDGER_DATA_DIR"        envDefault:"./data"`
	Dialect        string `env:"LEDGER_DIALECT"         envDefault:"standard"`
	TransferPolicy string `env:"LEDGER_TRANSFER_POLICY" envDefault:"different-bank"`

	// bcrypt cost of the per-ledger password files
	PasswordHashCost int `env:"LEDGER_PASSWORD_COST" envDefault:"10"`

	// Redis (optional - leave empty to disable idempotency)
	RedisURL            string        `env:"REDIS_URL"             envDefault:""`
	RedisConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"5s"`
	RedisPoolSize       int           `env:"REDIS_POOL_SIZE"       envDefault:"10"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Rate limiting per client address (0 disables)
	RateLimitRPS   float64 `env:"HTTP_RATE_LIMIT_RPS"   envDefault:"50"`
	RateLimitBurst int     `env:"HTTP_RATE_LIMIT_BURST" envDefault:"100"`

	// Metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
