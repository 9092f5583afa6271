package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"moviechat/internal/config"
	"moviechat/internal/logger"
	"moviechat/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "moviechat:"

// RedisCache stores filter results in Redis. Every failure is logged and
// reported as a miss, so a broken cache never fails a request.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed result cache
func NewRedisCache(cfg config.CacheConfig, log *zap.Logger) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return NewRedisCacheWithClient(rdb, cfg.TTL, log)
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger.OrNop(log)}
}

// Ping tests the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get returns the cached movies for key
func (c *RedisCache) Get(ctx context.Context, key string) ([]model.MovieRecord, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var movies []model.MovieRecord
	if err := json.Unmarshal(raw, &movies); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return movies, true
}

// Set caches movies under key for the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, movies []model.MovieRecord) {
	if movies == nil {
		movies = []model.MovieRecord{}
	}
	raw, err := json.Marshal(movies)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
