// Package cache stores serialized read views and purges them by namespace
// after writes.
package cache

import (
	"context"
	"path"
)

// Store is a byte cache that supports glob-style bulk deletion.
// Patterns use '*' as the only wildcard and never contain '/'.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// MemoryStore adapts a ShardedCache to Store for single-replica setups.
type MemoryStore struct {
	c *ShardedCache
}

func NewMemoryStore(c *ShardedCache) *MemoryStore {
	return &MemoryStore{c: c}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.c.Put(key, value)
	return nil
}

func (m *MemoryStore) DeletePattern(_ context.Context, pattern string) (int, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, err
	}
	return m.c.DeleteFunc(func(key string) bool {
		ok, _ := path.Match(pattern, key)
		return ok
	}), nil
}
