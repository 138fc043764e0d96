package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockCacheService is a map-backed CacheService for tests. Entries
// expire but are never evicted for capacity.
type MockCacheService struct {
	mu    sync.Mutex
	items map[string]mockItem
}

type mockItem struct {
	value     []byte
	expiresAt time.Time
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{items: make(map[string]mockItem)}
}

func (m *MockCacheService) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		delete(m.items, key)
		return nil, false
	}
	return it.value, true
}

func (m *MockCacheService) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	m.items[key] = mockItem{value: value, expiresAt: expiresAt}
	return nil
}

func (m *MockCacheService) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		for key := range m.items {
			if strings.HasPrefix(key, prefix) {
				delete(m.items, key)
			}
		}
		return nil
	}
	delete(m.items, pattern)
	return nil
}

// Size returns the number of entries, expired ones included.
func (m *MockCacheService) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Clear drops every entry.
func (m *MockCacheService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]mockItem)
}

var _ CacheService = (*MockCacheService)(nil)
