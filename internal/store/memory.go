package store

import (
	"context"
	"sync"
)

// MemoryTier is the ephemeral session tier: process-local, lost on
// restart. Safe for concurrent use.
type MemoryTier struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryTier creates an empty session tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{entries: make(map[string][]byte)}
}

func (m *MemoryTier) Name() string { return "session" }

func (m *MemoryTier) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryTier) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored
	return nil
}

func (m *MemoryTier) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
