// Package memory provides the in-memory SnapshotStore used by the server's
// hot path and by tests.
package memory

import (
	"context"
	"sync/atomic"

	"shitdash/internal/domain"
	"shitdash/internal/storage"
)

// SnapshotStore holds the current snapshot behind an atomic pointer.
// Replace swaps the pointer; readers holding the previous snapshot keep a
// consistent view until they drop it. Snapshots are immutable by contract.
type SnapshotStore struct {
	current atomic.Pointer[domain.Snapshot]
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Load returns the current snapshot reference.
func (s *SnapshotStore) Load(_ context.Context) (*domain.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, storage.ErrNoSnapshot
	}
	return snap, nil
}

// Replace atomically swaps in the new snapshot.
func (s *SnapshotStore) Replace(_ context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}
	s.current.Store(snap)
	return nil
}
