package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// MinSecretLen is the minimum JWT signing key length for HS256 (256 bits).
const MinSecretLen = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Breaker  BreakerConfig
	Retry    RetryConfig
	External ExternalConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=content_api"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type CacheConfig struct {
	TTL time.Duration `env:"CACHE_TTL, default=5m"`
}

type BreakerConfig struct {
	FailureRatio float64       `env:"BREAKER_FAILURE_RATIO, default=0.5"`
	MinRequests  uint32        `env:"BREAKER_MIN_REQUESTS,  default=5"`
	Interval     time.Duration `env:"BREAKER_INTERVAL,      default=60s"`
	Timeout      time.Duration `env:"BREAKER_TIMEOUT,       default=30s"`
	MaxRequests  uint32        `env:"BREAKER_MAX_REQUESTS,  default=3"`
}

type RetryConfig struct {
	MaxRetries int           `env:"RETRY_MAX, default=2"`
	Backoff    time.Duration `env:"RETRY_BACKOFF, default=100ms"`
}

type ExternalConfig struct {
	ServiceAURL string        `env:"EXTERNAL_SERVICE_A_URL, default=https://api.service-a.com"`
	ServiceBURL string        `env:"EXTERNAL_SERVICE_B_URL, default=https://api.service-b.com"`
	Timeout     time.Duration `env:"EXTERNAL_TIMEOUT,       default=2s"`
	RatePerSec  float64       `env:"EXTERNAL_RATE_PER_SEC,  default=10"`
	RateBurst   int           `env:"EXTERNAL_RATE_BURST,    default=20"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.JWT.Secret) < MinSecretLen {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least %d bytes for HS256", MinSecretLen)
	}
	return &cfg, nil
}
