// Package cache memoises model replies in memory so repeated prompts within
// the TTL do not spend the request budget again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type item struct {
	value     string
	expiresAt time.Time
}

// Cache is a TTL map of prompt hashes to replies. A nil *Cache is a valid
// cache that never hits.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
	hits  int
	miss  int
}

// New returns nil when ttl <= 0, which disables caching.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return nil
	}
	return &Cache{
		items: make(map[string]item),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Key hashes the parts that determine a reply.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Set(key, value string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{value: value, expiresAt: c.now().Add(c.ttl)}
	c.cleanupLocked()
}

func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		c.miss++
		return "", false
	}
	if c.now().After(it.expiresAt) {
		delete(c.items, key)
		c.miss++
		return "", false
	}
	c.hits++
	return it.value, true
}

// Stats returns hit and miss counters and the current size.
func (c *Cache) Stats() map[string]interface{} {
	if c == nil {
		return map[string]interface{}{"enabled": false}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]interface{}{
		"enabled": true,
		"hits":    c.hits,
		"misses":  c.miss,
		"size":    len(c.items),
	}
}

// cleanupLocked drops expired entries. Callers hold c.mu.
func (c *Cache) cleanupLocked() {
	now := c.now()
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
		}
	}
}
