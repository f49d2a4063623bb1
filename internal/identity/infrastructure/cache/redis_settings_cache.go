// Package cache provides the Redis read-through cache for the settings
// singleton. Every call goes through a circuit breaker so a dead Redis
// degrades to database reads instead of adding a timeout to every
// request.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/yifanzh/studyclock/internal/identity/domain"
)

const keyPrefix = "studyclock:settings:"

// RedisSettingsCache caches settings rows in Redis with a TTL.
type RedisSettingsCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisSettingsCache creates a settings cache. ttl of 0 disables
// expiry.
func NewRedisSettingsCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSettingsCache {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:    "settings-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RedisSettingsCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		ttl:     ttl,
		logger:  logger,
	}
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// Get returns the cached settings, or nil on a miss.
func (c *RedisSettingsCache) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		data, err := c.client.Get(ctx, key(userID)).Bytes()
		if err == redis.Nil {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("settings cache get: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		c.logger.WarnContext(ctx, "dropping corrupt settings cache entry", "user_id", userID, "error", err)
		return nil, nil
	}
	return &settings, nil
}

// Set stores the settings under the user's key.
func (c *RedisSettingsCache) Set(ctx context.Context, settings *domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("settings cache set: %w", err)
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, key(settings.UserID), data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("settings cache set: %w", err)
	}
	return nil
}

// Invalidate removes the user's cached settings.
func (c *RedisSettingsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, key(userID)).Err()
	})
	if err != nil {
		return fmt.Errorf("settings cache invalidate: %w", err)
	}
	return nil
}
