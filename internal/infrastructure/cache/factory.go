package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Stores bundles the cache-backed stores used by the application
type Stores struct {
	Client      *redis.Client // nil when running in memory
	Idempotency shared.IdempotencyStore
	Rates       RateCache
}

// Close releases the stores and the Redis client
func (s *Stores) Close() error {
	_ = s.Idempotency.Close()
	if c, ok := s.Rates.(*InMemoryRateCache); ok {
		_ = c.Close()
	}
	if s.Client != nil {
		return s.Client.Close()
	}
	return nil
}

// NewStores returns Redis-backed stores when Redis is enabled and reachable.
// Otherwise it falls back to in-memory stores and logs a warning, since
// in-memory state is not shared across instances.
func NewStores(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Stores {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Enabled {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			logger.Info("Using Redis stores", zap.String("addr", cfg.Addr()))
			return &Stores{
				Client:      client,
				Idempotency: NewRedisIdempotencyStore(client, ""),
				Rates:       NewRedisRateCache(client),
			}
		}
		logger.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
	}
	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		Rates:       NewInMemoryRateCache(),
	}
}
