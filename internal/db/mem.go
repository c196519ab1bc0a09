package db

import (
	"context"
	"sync"

	"github.com/mithrel/arttown/pkg/api"
)

type memStore struct {
	mu        sync.RWMutex
	tables    map[api.Table]CachedTable
	refreshes []RefreshRecord
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[api.Table]CachedTable)}
}

func (m *memStore) SaveTable(ctx context.Context, t CachedTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Payload = append([]byte(nil), t.Payload...)
	m.tables[t.Table] = t
	return nil
}

func (m *memStore) LoadTable(ctx context.Context, table api.Table) (CachedTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[table]
	if !ok {
		return CachedTable{}, ErrNotFound
	}
	t.Payload = append([]byte(nil), t.Payload...)
	return t, nil
}

func (m *memStore) SaveRefresh(ctx context.Context, tables []CachedTable, r RefreshRecord) error {
	for _, t := range tables {
		if err := m.SaveTable(ctx, t); err != nil {
			return err
		}
	}
	return m.AppendRefresh(ctx, r)
}

func (m *memStore) AppendRefresh(ctx context.Context, r RefreshRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes = append(m.refreshes, r)
	if n := len(m.refreshes) - refreshLogKeep; n > 0 {
		m.refreshes = append(m.refreshes[:0:0], m.refreshes[n:]...)
	}
	return nil
}

// ListRefreshes returns the newest records first.
func (m *memStore) ListRefreshes(ctx context.Context, limit int) ([]RefreshRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RefreshRecord, 0, len(m.refreshes))
	for i := len(m.refreshes) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.refreshes[i])
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }
