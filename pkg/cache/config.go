package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/channelwrapped/wrapbot/pkg/db"
	"github.com/sirupsen/logrus"
)

// Backend names accepted in CACHE_BACKEND.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config selects and configures the cache store.
type Config struct {
	Backend     string
	Dir         string
	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// NewConfig reads CACHE_* and REDIS_* environment variables.
func NewConfig() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config := &Config{
		Backend:     getEnvOrDefault("CACHE_BACKEND", BackendFile),
		Dir:         getEnvOrDefault("CACHE_DIR", "./wrapped-cache"),
		RedisAddr:   getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:     redisDB,
		RedisPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", "wrapped"),
	}
	return config, config.Validate()
}

// Validate checks the backend name.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendRedis, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

// Open builds the configured Store. The returned closer releases its connections.
func Open(ctx context.Context, config *Config, logger *logrus.Logger) (Store, io.Closer, error) {
	log := logger.WithField("backend", config.Backend)

	switch config.Backend {
	case BackendRedis:
		store := NewRedisStore(config.RedisAddr, config.RedisDB, config.RedisPrefix)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.WithField("addr", config.RedisAddr).Info("Using redis cache")
		return store, store, nil

	case BackendPostgres:
		dbConfig, err := db.NewConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("database config: %w", err)
		}
		conn, err := db.SetupDatabase(logger, dbConfig)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("database handle: %w", err)
		}
		log.Info("Using postgres cache")
		return NewPostgresStore(conn), sqlDB, nil

	default:
		store, err := NewFileStore(config.Dir)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("dir", config.Dir).Info("Using file cache")
		return store, closerFunc(func() error { return nil }), nil
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
