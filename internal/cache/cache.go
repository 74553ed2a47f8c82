package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL map keyed by session id. Reads refresh nothing; a value
// lives for ttl after its last Set.
type Cache[V any] struct {
	c   *gocache.Cache
	ttl time.Duration
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Cache[V]{
		c:   gocache.New(ttl, ttl*2),
		ttl: ttl,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

func (c *Cache[V]) Set(key string, val V) {
	c.c.Set(key, val, c.ttl)
}

// GetOrCreate returns the cached value for key, storing mk() first if absent.
// Concurrent callers for one key get the same value.
func (c *Cache[V]) GetOrCreate(key string, mk func() V) V {
	if v, ok := c.Get(key); ok {
		c.Set(key, v)
		return v
	}

	v := mk()
	if err := c.c.Add(key, v, c.ttl); err != nil {
		// lost the race; use the winner
		if got, ok := c.Get(key); ok {
			return got
		}
		c.Set(key, v)
	}
	return v
}

func (c *Cache[V]) Delete(key string) {
	c.c.Delete(key)
}

func (c *Cache[V]) Clear() {
	c.c.Flush()
}

func (c *Cache[V]) Len() int {
	return c.c.ItemCount()
}
