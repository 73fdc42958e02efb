package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Open builds the Store for backend. The returned func releases it.
func Open(ctx context.Context, backend, redisURL string, ttl time.Duration) (Store, func() error, error) {
	switch backend {
	case BackendRedis:
		client, err := NewRedisClient(ctx, redisURL)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, ttl), client.Close, nil
	case BackendMemory, "":
		c := NewShardedCache(WithShardTTL(ttl))
		return NewMemoryStore(c), func() error { c.Close(); return nil }, nil
	default:
		return nil, nil, errors.Errorf("unknown cache backend %q", backend)
	}
}
