package settings

import (
	"context"
	"sync"
)

// MemoryStore holds settings in process. Used in tests and single-node dev
// setups; production reads the shared Postgres row so all admin instances
// see the same rates.
type MemoryStore struct {
	mu sync.RWMutex
	s  Settings
}

func NewMemoryStore(s Settings) *MemoryStore {
	return &MemoryStore{s: s}
}

func (m *MemoryStore) Load(ctx context.Context) (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}
