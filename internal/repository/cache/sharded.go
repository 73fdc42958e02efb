package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

type entry struct {
	v []byte
	e time.Time
}

func (en entry) expired(now time.Time) bool {
	return !en.e.IsZero() && now.After(en.e)
}

type shard struct {
	mu   sync.RWMutex
	data map[string]entry
}

// ShardedCache is an in-process byte cache split into lock-independent
// shards. Entries expire lazily on read and in bulk on a janitor tick.
type ShardedCache struct {
	shards []shard
	ttl    time.Duration
	now    func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
}

type ShardedOption func(*ShardedCache)

// WithShards sets the shard count; it is rounded up to a power of two.
func WithShards(n int) ShardedOption {
	return func(c *ShardedCache) {
		size := 1
		for size < n {
			size <<= 1
		}
		if n <= 0 {
			size = 16
		}
		c.shards = make([]shard, size)
		for i := range c.shards {
			c.shards[i] = shard{data: make(map[string]entry)}
		}
	}
}

func WithShardTTL(ttl time.Duration) ShardedOption { return func(c *ShardedCache) { c.ttl = ttl } }

func withClock(now func() time.Time) ShardedOption { return func(c *ShardedCache) { c.now = now } }

func NewShardedCache(opts ...ShardedOption) *ShardedCache {
	c := &ShardedCache{now: time.Now, stop: make(chan struct{})}
	WithShards(16)(c)
	for _, o := range opts {
		o(c)
	}
	if c.ttl > 0 {
		c.ticker = time.NewTicker(c.ttl / 2)
		go func() {
			for {
				select {
				case <-c.ticker.C:
					c.purge()
				case <-c.stop:
					return
				}
			}
		}()
	}
	return c
}

func (c *ShardedCache) Close() {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	close(c.stop)
}

func (c *ShardedCache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	idx := int(h.Sum32()) & (len(c.shards) - 1)
	return &c.shards[idx]
}

func (c *ShardedCache) Put(key string, v []byte) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{v: v}
	if c.ttl > 0 {
		e.e = c.now().Add(c.ttl)
	}
	s.data[key] = e
}

func (c *ShardedCache) Get(key string) ([]byte, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && cur.e == e.e {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *ShardedCache) Delete(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// DeleteFunc removes every key for which match returns true and reports
// how many entries were dropped.
func (c *ShardedCache) DeleteFunc(match func(key string) bool) int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k := range s.data {
			if match(k) {
				delete(s.data, k)
				n++
			}
		}
		s.mu.Unlock()
	}
	return n
}

// Len counts live entries.
func (c *ShardedCache) Len() int {
	n := 0
	now := c.now()
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for _, e := range s.data {
			if !e.expired(now) {
				n++
			}
		}
		s.mu.RUnlock()
	}
	return n
}

func (c *ShardedCache) purge() {
	now := c.now()
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k, e := range s.data {
			if e.expired(now) {
				delete(s.data, k)
			}
		}
		s.mu.Unlock()
	}
}
