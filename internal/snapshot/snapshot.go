// Package snapshot saves and restores the contents of string domains through
// the storage layer.
package snapshot

import (
	"context"
	"fmt"

	"domainvar/internal/ordering"
	"domainvar/pkg/domain"
	"domainvar/pkg/logger"
	"domainvar/pkg/restricted"
	"domainvar/pkg/serrors"
	"domainvar/pkg/storage"

	"go.uber.org/zap"
)

// service is the concrete implementation of the Service interface.
type service struct {
	storage storage.Storage
}

// Save stores the current values of d under name, overwriting any snapshot
// with that name. order is the name d was built with; it must be parseable by
// ordering.Parse so the snapshot can be restored.
func (s service) Save(ctx context.Context,
	name string,
	d *restricted.Domain[string],
	order string) (*domain.Snapshot, error) {
	if name == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "snapshot name is required")
	}
	if d == nil {
		return nil, serrors.With(serrors.ErrBadRequest, "domain is required")
	}
	if _, err := ordering.Parse(order); err != nil {
		return nil, err
	}

	var saved *domain.Snapshot
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		existing, err := tx.SnapshotByName(ctx, name)
		if err != nil {
			return fmt.Errorf("could not get snapshot: %w", err)
		}
		if existing != nil {
			logger.Debug(ctx, "overwriting snapshot",
				zap.String("name", name),
				zap.Int("previousValues", len(existing.Values)))
		}

		saved, err = tx.UpsertSnapshot(ctx, domain.Snapshot{
			Name:   name,
			Order:  ordering.Canonical(order),
			Values: d.Values(),
		})
		if err != nil {
			return fmt.Errorf("could not upsert snapshot: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	logger.Info(ctx, "saved snapshot", zap.String("name", name), zap.Int("values", len(saved.Values)))

	return saved, nil
}

// Load returns the snapshot stored under name.
func (s service) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	snap, err := s.storage.SnapshotByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("could not get snapshot: %w", err)
	}
	if snap == nil {
		return nil, serrors.With(serrors.ErrNotFound, "snapshot %q not found", name)
	}

	return snap, nil
}

// Restore builds a new domain from the snapshot stored under name, using the
// order recorded with it. opts are applied after the snapshot name, so a
// caller-supplied WithName wins.
func (s service) Restore(ctx context.Context,
	name string,
	opts ...restricted.Option) (*restricted.Domain[string], error) {
	snap, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	order, err := ordering.Parse(snap.Order)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "snapshot %q has an unusable order", name)
	}

	return restricted.NewWithOrder(order, snap.Values, append([]restricted.Option{restricted.WithName(name)}, opts...)...), nil
}

// List returns every stored snapshot ordered by name.
func (s service) List(ctx context.Context) ([]domain.Snapshot, error) {
	snaps, err := s.storage.Snapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list snapshots: %w", err)
	}

	return snaps, nil
}

// Delete removes the snapshot stored under name.
func (s service) Delete(ctx context.Context, name string) error {
	deleted, err := s.storage.DeleteSnapshot(ctx, name)
	if err != nil {
		return fmt.Errorf("could not delete snapshot: %w", err)
	}
	if !deleted {
		return serrors.With(serrors.ErrNotFound, "snapshot %q not found", name)
	}

	return nil
}

// New constructs a Service backed by the given storage.
func New(storage storage.Storage) Service {
	return service{storage: storage}
}
