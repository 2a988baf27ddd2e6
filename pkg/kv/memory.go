package kv

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	version   int64
	expiresAt *time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return e.expiresAt != nil && now.After(*e.expiresAt)
}

// MemoryStore keeps everything in a map. Used by tests and KV_DRIVER=memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, 0, ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, e.version, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.live(key)
	m.data[key] = memEntry{value: clone(value), version: e.version + 1, expiresAt: expiry(ttl)}
	return nil
}

func (m *MemoryStore) CompareAndSet(_ context.Context, key string, value []byte, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.live(key)
	if e.version != expected {
		return e.version, ErrVersionMismatch
	}
	next := e.version + 1
	m.data[key] = memEntry{value: clone(value), version: next}
	return next, nil
}

// live returns the current entry, treating expired ones as absent.
// Caller holds m.mu.
func (m *MemoryStore) live(key string) memEntry {
	e, ok := m.data[key]
	if !ok || e.expired(time.Now()) {
		return memEntry{}
	}
	return e
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
func (m *MemoryStore) Close() error               { return nil }
func (m *MemoryStore) Driver() string             { return "memory" }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
