package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache backed by go-cache
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates an in-process cache. Expired entries are purged every 2*ttl.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := m.store.Get(key)
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store.Set(key, data, ttl)
	return nil
}

var _ Cache = (*Memory)(nil)
