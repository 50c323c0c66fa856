// Package local keeps the directory snapshot in process memory or in a
// JSON file on disk. Used when no database is configured.
package local

import (
	"context"
	"sync"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// MemoryStore holds one snapshot in memory.
type MemoryStore struct {
	mu    sync.Mutex
	snap  *directory.Snapshot
	saves int
}

// NewMemoryStore returns an empty store. Load reports ErrSnapshotNotFound
// until the first Save.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ directory.SnapshotStore = (*MemoryStore)(nil)

// Load returns a copy of the stored snapshot.
func (m *MemoryStore) Load(context.Context) (*directory.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, shared.ErrSnapshotNotFound
	}
	return m.snap.Clone(), nil
}

// Save replaces the stored snapshot with a copy of snap.
func (m *MemoryStore) Save(_ context.Context, snap *directory.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
