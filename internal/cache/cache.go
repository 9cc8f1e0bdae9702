// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes computed alignments for a bounded time. A cache
// is best-effort: a lost or unreadable entry is a miss, never an error.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdiddy/votewallet/pkg/types"
)

// DefaultTTL is used when a cache is configured without one.
const DefaultTTL = 24 * time.Hour

// Cache stores values by key with a per-entry time to live.
type Cache[V any] interface {
	// Get returns the value stored under key if it has not expired.
	Get(ctx context.Context, key string) (V, bool)

	// Set stores v under key, replacing any earlier entry.
	Set(ctx context.Context, key string, v V, ttl time.Duration)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// New builds the cache selected by cfg.Backend.
func New[V any](cfg types.CacheConfig, logger *slog.Logger) (Cache[V], error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory[V](nil), nil
	case "redis":
		return NewRedis[V](cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
