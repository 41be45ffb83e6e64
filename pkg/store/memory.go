package store

import "sync"

// MemStore is an in-memory Store used by tests and by callers that do not
// want persistence across runs.
type MemStore struct {
	mu sync.RWMutex
	kv map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{kv: make(map[string]string)}
}

// Get returns the value stored under key and whether it was present.
func (m *MemStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

// Delete removes key.
func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

// Close is a no-op for MemStore.
func (m *MemStore) Close() error {
	return nil
}

var _ Store = (*MemStore)(nil)
