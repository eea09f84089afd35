// Package storage defines the Record Store boundary: snapshots of the
// transaction-log collections are loaded and replaced wholesale, never
// mutated, so an aggregation always reads one consistent reference.
package storage

import (
	"context"

	"shitdash/internal/domain"
)

// SnapshotStore provides whole-snapshot access to the record collections.
type SnapshotStore interface {
	// Load returns the current snapshot. Returns ErrNoSnapshot when nothing
	// has been stored yet.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Replace atomically swaps in a new snapshot, discarding the old one.
	Replace(ctx context.Context, snap *domain.Snapshot) error
}
