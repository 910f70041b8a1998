package domain

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotID uniquely identifies a saved snapshot.
// It wraps uuid.UUID to provide type safety at the domain layer.
type SnapshotID uuid.UUID

// String returns the canonical UUID text form.
func (id SnapshotID) String() string {
	return uuid.UUID(id).String()
}

// Snapshot is the saved contents of a named domain. Saving a snapshot under an
// existing name overwrites it: snapshots are not a history.
type Snapshot struct {
	// ID is the unique identifier of the snapshot.
	ID SnapshotID `json:"id"`
	// Name is the unique, user-chosen name of the snapshot.
	Name string `json:"name"`
	// Order names the ordering the values were sorted by, e.g. "lexical" or
	// "collate:de". Loading a snapshot rebuilds the domain with this order.
	Order string `json:"order"`
	// Values holds the domain contents in ascending order.
	Values []string `json:"values"`

	// CreatedAt is the time the snapshot was first saved.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time the snapshot was last overwritten.
	UpdatedAt time.Time `json:"updatedAt"`
}
