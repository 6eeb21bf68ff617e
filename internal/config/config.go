// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/schooldash/pkg/db"
	"github.com/dmitrymomot/schooldash/pkg/logger"
	"github.com/dmitrymomot/schooldash/pkg/redis"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var (
	ErrParse          = errors.New("config: failed to parse environment")
	ErrInvalidDriver  = errors.New("config: invalid store driver")
	ErrMissingBackend = errors.New("config: store backend is not configured")
)

// Config is the complete service configuration.
type Config struct {
	HTTP     HTTP
	Store    Store
	Cache    Cache
	Log      logger.Config
	Database db.Config
	Redis    redis.Config
}

// HTTP configures the API server.
type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Store selects the document store backend.
type Store struct {
	Driver string `env:"STORE_DRIVER" envDefault:"memory"`
	// Serve reads from the bundled fixtures while the backend is unreachable.
	FixtureFallback bool `env:"STORE_FIXTURE_FALLBACK" envDefault:"false"`
	// Load the bundled fixtures into the memory store on startup.
	SeedMemory bool `env:"STORE_SEED_MEMORY" envDefault:"true"`
	// Key prefix for the redis driver.
	RedisKeyPrefix string `env:"STORE_REDIS_KEY_PREFIX" envDefault:"docs"`
}

// Cache configures the read-through cache.
type Cache struct {
	DefaultTTL time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"5m"`
	// Zero keeps the cache unbounded.
	MaxEntries    int    `env:"CACHE_MAX_ENTRIES" envDefault:"0"`
	StatsSchedule string `env:"CACHE_STATS_SCHEDULE" envDefault:"@every 5m"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected driver has its connection settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres:
		if c.Database.ConnectionString == "" {
			return fmt.Errorf("%w: DATABASE_CONN_URL is required for the postgres driver", ErrMissingBackend)
		}
	case DriverRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for the redis driver", ErrMissingBackend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Store.Driver)
	}
	return nil
}
