package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
	added     uint64
}

// Memory is an in-process cache bounded by entry count. When full, the
// oldest entry is evicted.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	max     int
	seq     uint64
	now     func() time.Time
}

// NewMemory creates an in-memory cache holding at most max entries.
// max <= 0 means unbounded.
func NewMemory(max int) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		max:     max,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && m.max > 0 && len(m.entries) >= m.max {
		m.evictOldest()
	}

	e := memoryEntry{data: make([]byte, len(data))}
	copy(e.data, data)
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.seq++
	e.added = m.seq
	m.entries[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) evictOldest() {
	var oldestKey string
	var oldest uint64
	for k, e := range m.entries {
		if oldestKey == "" || e.added < oldest {
			oldestKey, oldest = k, e.added
		}
	}
	delete(m.entries, oldestKey)
}

var _ Cache = (*Memory)(nil)
