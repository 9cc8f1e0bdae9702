// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
	ttl      time.Duration
}

// Memory is an in-process TTL cache. Reads take no lock.
type Memory[V any] struct {
	clock   Clock
	entries sync.Map
}

// NewMemory returns an empty cache. A nil clock uses the wall clock.
func NewMemory[V any](clock Clock) *Memory[V] {
	if clock == nil {
		clock = wallClock{}
	}
	return &Memory[V]{clock: clock}
}

// Get returns the entry for key when now - storedAt <= ttl. An expired
// entry is evicted.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	raw, ok := m.entries.Load(key)
	if !ok {
		return zero, false
	}
	e := raw.(*entry[V])
	if m.clock.Now().Sub(e.storedAt) > e.ttl {
		m.entries.CompareAndDelete(key, raw)
		return zero, false
	}
	return e.value, true
}

// Set stores v under key. A non-positive ttl uses DefaultTTL.
func (m *Memory[V]) Set(_ context.Context, key string, v V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.entries.Store(key, &entry[V]{value: v, storedAt: m.clock.Now(), ttl: ttl})
}

// Delete drops key.
func (m *Memory[V]) Delete(key string) {
	m.entries.Delete(key)
}

// Len counts the stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
