package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Dispatch DispatchConfig
	Realtime RealtimeConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dispatch"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type DispatchConfig struct {
	// Radii are search radii in metres, tried in the order given.
	Radii          []int         `env:"DISPATCH_RADII,           default=10000,20000,40000,50000"`
	OutreachFactor float64       `env:"DISPATCH_OUTREACH_FACTOR, default=1.5"`
	SearchStrategy string        `env:"DISPATCH_SEARCH_STRATEGY, default=replace"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL,          default=24h"`
	NotifyWorkers  int           `env:"NOTIFY_WORKERS,           default=8"`
}

type RealtimeConfig struct {
	// AllowedOrigins limits browser origins for /ws. Empty allows same-host only.
	AllowedOrigins []string `env:"WS_ALLOWED_ORIGINS"`
	Channel        string   `env:"REALTIME_CHANNEL, default=dispatch:events"`
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if len(c.Dispatch.Radii) == 0 {
		errs = append(errs, errors.New("DISPATCH_RADII must list at least one radius"))
	}
	for i, r := range c.Dispatch.Radii {
		if r <= 0 {
			errs = append(errs, fmt.Errorf("DISPATCH_RADII[%d] must be positive, got %d", i, r))
		}
		if i > 0 && r <= c.Dispatch.Radii[i-1] {
			errs = append(errs, fmt.Errorf("DISPATCH_RADII must be ascending, got %d after %d", r, c.Dispatch.Radii[i-1]))
		}
	}
	if c.Dispatch.OutreachFactor < 1 {
		errs = append(errs, fmt.Errorf("DISPATCH_OUTREACH_FACTOR must be at least 1, got %v", c.Dispatch.OutreachFactor))
	}
	switch c.Dispatch.SearchStrategy {
	case "replace", "accumulate":
	default:
		errs = append(errs, fmt.Errorf("DISPATCH_SEARCH_STRATEGY must be replace or accumulate, got %q", c.Dispatch.SearchStrategy))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
