// Package store persists discovery ledger snapshots between sessions.
// The format is the ledger's own export: an opaque JSON array of
// discovery records. Redis is the production backend; MemoryStore is
// the fallback when redis is disabled.
package store

import (
	"context"
	"sync"
)

type SnapshotStore interface {
	// Save writes the snapshot for key, overwriting any previous one.
	Save(ctx context.Context, key string, data []byte) error
	// Load returns the snapshot for key, or (nil, nil) when absent.
	Load(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// MemoryStore keeps snapshots for the process lifetime only.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.data[key] = buf
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (m *MemoryStore) Close() error { return nil }
