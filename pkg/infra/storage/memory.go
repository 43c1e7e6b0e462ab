package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
)

var (
	_ platform.Storage   = (*MemoryStorage)(nil)
	_ platform.KeyLister = (*MemoryStorage)(nil)
)

// MemoryStorage is a thread-safe in-process key-value storage. Its content
// lives as long as the process, which makes it the per-session storage.
type MemoryStorage struct {
	Data map[string]string
	Mu   sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Data: make(map[string]string),
	}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	value, ok := m.Data[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	delete(m.Data, key)
	return nil
}

func (m *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	keys := make([]string, 0, len(m.Data))
	for k := range m.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes all entries.
func (m *MemoryStorage) Clear() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Data = make(map[string]string)
}
