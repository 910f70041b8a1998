// Package storage declares how domain snapshots are persisted. The postgres
// subpackage is the only backend; the interfaces exist so services can be
// tested against gomock doubles.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"io/fs"
)

// AllStorage is everything a handle can do regardless of whether it runs
// inside a transaction.
type AllStorage interface {
	SnapshotStorage
}

// TxStorage is a handle bound to one transaction. It must not be used after
// Commit or Rollback.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage is the root, non-transactional handle.
type Storage interface {
	AllStorage

	// Close releases the connection pool.
	Close() error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Migrate applies every pending schema migration found in fsys.
	Migrate(ctx context.Context, fsys fs.FS) error

	// Begin starts a transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx runs cb inside a transaction, committing when cb returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
