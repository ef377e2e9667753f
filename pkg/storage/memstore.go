package storage

import (
	"sync"
)

var (
	_ Store = (*MemStore)(nil)
)

// MemStore is a Store held in process memory.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string]string),
	}
}

func (m *MemStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.objects[key]
	if !ok {
		return "", ErrNotFound
	}

	return v, nil
}

func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = value

	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)

	return nil
}
