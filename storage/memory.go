// Package storage provides the pluggable item store backends. Every backend
// exposes the same whole-board contract: LoadAll returns the full item
// collection, SaveAll replaces it. Consistency across concurrent writers is
// last-writer-wins at the granularity of a full save.
package storage

import (
	"context"
	"sync"

	"medboard-api/domain"
)

// Memory is a volatile in-process store, the default backend.
type Memory struct {
	mu    sync.Mutex
	items []domain.BoardItem
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// LoadAll returns a copy of the stored items.
func (m *Memory) LoadAll(ctx context.Context) ([]domain.BoardItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.BoardItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

// SaveAll replaces the stored collection.
func (m *Memory) SaveAll(ctx context.Context, items []domain.BoardItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make([]domain.BoardItem, len(items))
	copy(m.items, items)
	return nil
}
