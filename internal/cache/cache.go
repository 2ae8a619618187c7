// Package cache provides the key/value store behind the catalog read-through
// cache. Values are stored as JSON so every backend behaves the same.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a key/value store with per-entry TTL
type Cache interface {
	// Get decodes the entry into dest. It reports false on a miss or expired entry.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Backend names a cache implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// New builds the cache selected by backend
func New(ctx context.Context, backend Backend, redisURL string, defaultTTL time.Duration) (Cache, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(defaultTTL), nil
	case BackendRedis:
		return NewRedis(ctx, redisURL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q; valid: %s, %s", backend, BackendMemory, BackendRedis)
	}
}
