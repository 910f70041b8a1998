package storage

import (
	"context"

	"domainvar/pkg/domain"
)

// SnapshotStorage defines persistence operations for named domain snapshots.
type SnapshotStorage interface {
	// UpsertSnapshot stores the snapshot under its name, overwriting the
	// order and values of an existing snapshot with the same name. The stored
	// row is returned, including generated fields.
	UpsertSnapshot(ctx context.Context, snapshot domain.Snapshot) (*domain.Snapshot, error)
	// SnapshotByName fetches a snapshot by name. Returns nil when not found.
	SnapshotByName(ctx context.Context, name string) (*domain.Snapshot, error)
	// Snapshots returns every snapshot ordered by name. Values are not loaded.
	Snapshots(ctx context.Context) ([]domain.Snapshot, error)
	// DeleteSnapshot removes the snapshot with the given name and reports
	// whether it existed.
	DeleteSnapshot(ctx context.Context, name string) (bool, error)
}
