package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the process-local seen cache used when Redis is not configured.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]time.Time),
		ttl:  ttlOrDefault(ttl),
		now:  time.Now,
	}
}

func (m *MemoryCache) Close() error {
	return nil
}

func (m *MemoryCache) IsProcessed(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(url)
	expires, ok := m.data[k]
	if !ok {
		return false, nil
	}
	if m.now().After(expires) {
		delete(m.data, k)
		return false, nil
	}
	return true, nil
}

func (m *MemoryCache) MarkProcessed(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key(url)] = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryCache) ClearProcessed(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]time.Time)
	return nil
}
