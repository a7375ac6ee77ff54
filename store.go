package hnsearch

import (
	"context"
	"sync"
)

// StoreKey is the key the last search term is persisted under.
const StoreKey = "search"

// Store persists small string values between sessions.
type Store interface {
	// LoadString returns the value for key and whether it was present.
	LoadString(ctx context.Context, key string) (string, bool, error)
	// SaveString stores value under key, replacing any previous value.
	SaveString(ctx context.Context, key, value string) error
}

// MapStore is an in-memory Store. The zero value is ready to use.
type MapStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// LoadString implements Store.
func (m *MapStore) LoadString(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// SaveString implements Store.
func (m *MapStore) SaveString(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}
