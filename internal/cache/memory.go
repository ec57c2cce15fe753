package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   float64
	expires time.Time // zero means no expiry
}

// Memory is an in-process Cache used when no Redis server is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ Cache = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) (float64, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return 0, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value float64, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
