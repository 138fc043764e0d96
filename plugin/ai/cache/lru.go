package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRUCache is a fixed-capacity LRU cache whose entries expire after a TTL.
type LRUCache struct {
	capacity   int
	defaultTTL time.Duration

	mu     sync.Mutex
	items  map[string]*list.Element
	recent *list.List

	hits   int64
	misses int64
}

type item struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewLRUCache creates an LRU cache. Non-positive capacity or TTL fall
// back to 1000 entries and 5 minutes.
func NewLRUCache(capacity int, defaultTTL time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &LRUCache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*list.Element),
		recent:     list.New(),
	}
}

// Get returns the value for key if present and not expired.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	it := el.Value.(*item)
	if time.Now().After(it.expiresAt) {
		c.remove(el)
		c.misses++
		return nil, false
	}
	c.recent.MoveToFront(el)
	c.hits++
	return it.value, true
}

// Set stores value under key. A non-positive ttl uses the default.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		it := el.Value.(*item)
		it.value = value
		it.expiresAt = time.Now().Add(ttl)
		c.recent.MoveToFront(el)
		return
	}

	for len(c.items) >= c.capacity {
		oldest := c.recent.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest)
	}

	el := c.recent.PushFront(&item{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	c.items[key] = el
}

// Invalidate removes entries matching pattern and returns how many were
// dropped. A trailing * matches by prefix, e.g. "tools:*".
func (c *LRUCache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.HasSuffix(pattern, "*") {
		if el, ok := c.items[pattern]; ok {
			c.remove(el)
			return 1
		}
		return 0
	}

	prefix := strings.TrimSuffix(pattern, "*")
	count := 0
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.remove(el)
			count++
		}
	}
	return count
}

// Size returns the number of live entries.
func (c *LRUCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops every entry but keeps the hit counters.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.recent.Init()
}

// Stats returns the cumulative hit and miss counts.
func (c *LRUCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// CleanupExpired drops every expired entry and returns how many were
// removed.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expired []*list.Element
	for _, el := range c.items {
		if now.After(el.Value.(*item).expiresAt) {
			expired = append(expired, el)
		}
	}
	for _, el := range expired {
		c.remove(el)
	}
	return len(expired)
}

// remove must be called with the lock held.
func (c *LRUCache) remove(el *list.Element) {
	c.recent.Remove(el)
	delete(c.items, el.Value.(*item).key)
}
