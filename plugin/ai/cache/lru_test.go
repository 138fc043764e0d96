package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	_, ok := c.Get("tools:promotions")
	assert.False(t, ok)

	c.Set("tools:promotions", []byte(`[{"code":"WELCOME10"}]`), 0)
	got, ok := c.Get("tools:promotions")
	require.True(t, ok)
	assert.Equal(t, []byte(`[{"code":"WELCOME10"}]`), got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("tools:store_info", []byte("hours"), time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, ok := c.Get("tools:store_info")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache(3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte{byte(i)}, 0)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	_, ok := c.Get("k0")
	require.True(t, ok)

	c.Set("k3", []byte{3}, 0)
	assert.Equal(t, 3, c.Size())

	_, ok = c.Get("k1")
	assert.False(t, ok)
	_, ok = c.Get("k0")
	assert.True(t, ok)
}

func TestLRUCacheInvalidate(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("tools:promotions", []byte("a"), 0)
	c.Set("tools:store_info", []byte("b"), 0)
	c.Set("other:key", []byte("c"), 0)

	assert.Equal(t, 1, c.Invalidate("tools:promotions"))
	assert.Equal(t, 1, c.Invalidate("tools:*"))
	assert.Equal(t, 0, c.Invalidate("tools:*"))
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheCleanupExpired(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("stale1", []byte("a"), time.Nanosecond)
	c.Set("stale2", []byte("b"), time.Nanosecond)
	c.Set("fresh", []byte("c"), time.Minute)
	time.Sleep(time.Millisecond)

	assert.Equal(t, 2, c.CleanupExpired())
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheUpdateExisting(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("k", []byte("v1"), 0)
	c.Set("k", []byte("v2"), 0)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, 1, c.Size())
}
