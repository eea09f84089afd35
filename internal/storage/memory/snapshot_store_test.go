package memory

import (
	"context"
	"errors"
	"testing"

	"shitdash/internal/domain"
	"shitdash/internal/storage"
)

func TestSnapshotStore_LoadBeforeReplace(t *testing.T) {
	store := NewSnapshotStore()
	_, err := store.Load(context.Background())
	if !errors.Is(err, storage.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSnapshotStore_ReplaceThenLoad(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	first := &domain.Snapshot{
		Staking: []*domain.StakingRecord{
			{Timestamp: "2024-03-05 10:00:00", Address: "walletA", Amount: 10, Action: domain.ActionStake},
		},
	}
	if err := store.Replace(ctx, first); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != first {
		t.Errorf("Load returned a different snapshot reference")
	}

	// A second Replace swaps the snapshot wholesale.
	second := &domain.Snapshot{}
	if err := store.Replace(ctx, second); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != second {
		t.Errorf("Load did not observe the replaced snapshot")
	}
}

func TestSnapshotStore_RejectsNil(t *testing.T) {
	store := NewSnapshotStore()
	err := store.Replace(context.Background(), nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
