// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "votewallet:alignment:"

// Redis stores JSON-encoded entries in Redis with a server-side expiry.
type Redis[V any] struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis connects lazily to the server at addr.
func NewRedis[V any](addr, password string, db int, logger *slog.Logger) *Redis[V] {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisClient[V](rdb, logger)
}

// NewRedisClient wraps an existing client.
func NewRedisClient[V any](client *redis.Client, logger *slog.Logger) *Redis[V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis[V]{client: client, logger: logger}
}

// Get returns the decoded entry for key. Server and decode errors are
// logged and reported as a miss.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var v V
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false
	}
	if err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		r.logger.Warn("cache entry unreadable", "key", key, "error", err)
		return v, false
	}
	return v, true
}

// Set stores v under key with expiry ttl. A non-positive ttl uses
// DefaultTTL. Failures are logged.
func (r *Redis[V]) Set(ctx context.Context, key string, v V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("cache entry not encodable", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Ping checks the server connection.
func (r *Redis[V]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *Redis[V]) Close() error {
	return r.client.Close()
}
