package scaling

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pefman/legacy-idle/internal/models"
)

// Cache memoizes scaled monsters. It is an optimization only: a miss always
// recomputes, and clearing never changes Scale output.
type Cache interface {
	Get(key Key) (models.ScaledMonster, bool)
	Put(key Key, m models.ScaledMonster)
	Clear()
}

// MemoryCache is a mutex-guarded in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key]models.ScaledMonster
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[Key]models.ScaledMonster{}}
}

func (c *MemoryCache) Get(key Key) (models.ScaledMonster, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[key]
	return m, ok
}

func (c *MemoryCache) Put(key Key, m models.ScaledMonster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = m
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[Key]models.ScaledMonster{}
}

// Len reports the number of cached instances.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache shares scaled monsters between processes. Redis failures are
// treated as misses.
type RedisCache struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache stores entries under prefix with the given ttl (0 keeps them
// until Clear).
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, timeout: 500 * time.Millisecond}
}

func (c *RedisCache) key(k Key) string { return c.prefix + k.String() }

func (c *RedisCache) Get(key Key) (models.ScaledMonster, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return models.ScaledMonster{}, false
	}
	var m models.ScaledMonster
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.ScaledMonster{}, false
	}
	return m, true
}

func (c *RedisCache) Put(key Key, m models.ScaledMonster) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_ = c.client.Set(ctx, c.key(key), raw, c.ttl).Err()
}

// Clear deletes every key under the cache prefix.
func (c *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			_ = c.client.Del(ctx, batch...).Err()
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		_ = c.client.Del(ctx, batch...).Err()
	}
}
