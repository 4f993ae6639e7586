package history

import (
	"context"
	"sync"

	"github.com/matst80/slask-list/pkg/types"
)

// Store keeps the state payloads of history entries.
type Store interface {
	Save(ctx context.Context, key, html string) error
	Load(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-process store with a byte quota, like a browser session history.
// A quota of zero means unlimited.
type MemoryStore struct {
	mu    sync.Mutex
	quota int
	used  int
	data  map[string]string
}

func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		quota: quota,
		data:  make(map[string]string),
	}
}

func (m *MemoryStore) Save(_ context.Context, key, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	used := m.used - len(m.data[key]) + len(html)
	if m.quota > 0 && used > m.quota {
		return types.ErrQuotaExceeded
	}
	m.data[key] = html
	m.used = used
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	html, ok := m.data[key]
	return html, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used -= len(m.data[key])
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Used() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}
