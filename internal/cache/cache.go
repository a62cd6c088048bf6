// Package cache provides the TTL cache used for external API responses:
// an in-memory implementation by default, with a Redis adapter selected
// when an address is configured.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Cache stores byte payloads with per-entry TTLs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	// DeletePattern removes entries whose key contains pattern and returns
	// the number removed.
	DeletePattern(ctx context.Context, pattern string) (int, error)
	// PurgeExpired removes expired entries and returns the number removed.
	PurgeExpired(ctx context.Context) (int, error)
	Stats() Stats
}

// Stats reports cache performance counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
}

type memory struct {
	mu      sync.Mutex
	entries map[string]entry
	hits    int64
	misses  int64
}

type entry struct {
	b   []byte
	exp time.Time
}

// NewMemory returns an in-memory cache.
func NewMemory() Cache {
	return &memory{entries: make(map[string]entry)}
}

// New returns a Redis-backed cache when addr is non-empty, otherwise an
// in-memory cache.
func New(addr, password string, db int) Cache {
	if addr == "" {
		return NewMemory()
	}
	return &redisCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
	}
}

func (c *memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.b, true
}

func (c *memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{b: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	c.entries[key] = e
}

func (c *memory) DeletePattern(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (c *memory) PurgeExpired(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (c *memory) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: int64(len(c.entries))}
}

type redisCache struct {
	client *redis.Client
	hits   int64
	misses int64
	mu     sync.Mutex
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	v, err := r.client.Get(ctx, key).Bytes()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.misses++
		return nil, false
	}
	r.hits++
	return v, true
}

func (r *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = r.client.Set(ctx, key, val, ttl).Err()
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	removed := 0
	iter := r.client.Scan(ctx, 0, "*"+pattern+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

// PurgeExpired is a no-op for Redis; the server expires keys itself.
func (r *redisCache) PurgeExpired(context.Context) (int, error) {
	return 0, nil
}

func (r *redisCache) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Hits: r.hits, Misses: r.misses}
}
