// Package cache provides the shared key/value storage behind the rate
// limiter and the cause catalog.
package cache

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/redis/v3"

	"whomortality/internal/config"
)

// New returns Redis-backed storage when REDIS_URL is set, or nil so callers
// fall back to process-local state.
func New(cfg *config.Config) fiber.Storage {
	if cfg.RedisURL == "" {
		return nil
	}
	slog.Info("using redis storage for rate limiting and catalog cache")
	return redis.New(redis.Config{
		URL: cfg.RedisURL,
	})
}
