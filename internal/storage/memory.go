package storage

import (
	"bytes"
	"context"
	"sync"
)

// MemoryBackend keeps values in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = bytes.Clone(value)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
