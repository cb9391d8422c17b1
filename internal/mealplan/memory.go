package mealplan

import "sync"

// MemoryStorage is an in-process Storage slot
type MemoryStorage struct {
	mu    sync.Mutex
	value string
}

// Get returns the stored value
func (m *MemoryStorage) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

// Set overwrites the stored value
func (m *MemoryStorage) Set(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return nil
}
