package postgres

import (
	"context"
	"fmt"

	"domainvar/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const (
	snapshotsTable = "snapshots"
)

// UpsertSnapshot inserts the snapshot or, when the name is taken, overwrites
// its ordering and values and bumps updated_at.
func (p *PgSQL) UpsertSnapshot(ctx context.Context, snapshot domain.Snapshot) (*domain.Snapshot, error) {
	var row PgSnapshot
	if err := row.FromDomain(snapshot); err != nil {
		return nil, err
	}

	var result PgSnapshot
	if _, err := p.Builder.Insert(snapshotsTable).
		Rows(goqu.Record{
			"name":     row.Name,
			"ordering": row.Ordering,
			"vals":     row.Values,
		}).
		OnConflict(goqu.DoUpdate("name", goqu.Record{
			"ordering":   goqu.L("EXCLUDED.ordering"),
			"vals":       goqu.L("EXCLUDED.vals"),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		})).
		Returning(&PgSnapshot{}).
		Executor().ScanStructContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not upsert snapshot into pg: %w", err)
	}

	return result.ToDomain()
}

// SnapshotByName returns the snapshot with the given name, or nil.
func (p *PgSQL) SnapshotByName(ctx context.Context, name string) (*domain.Snapshot, error) {
	var row PgSnapshot
	found, err := p.Builder.From(snapshotsTable).
		Where(goqu.I("name").Eq(name)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch snapshot by name from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// Snapshots returns every snapshot ordered by name.
func (p *PgSQL) Snapshots(ctx context.Context) ([]domain.Snapshot, error) {
	var rows []PgSnapshot
	if err := p.Builder.From(snapshotsTable).
		Order(goqu.I("name").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch snapshots from pg: %w", err)
	}

	return pgSnapshotsToDomain(rows)
}

// DeleteSnapshot removes the snapshot with the given name and reports whether
// a row was deleted.
func (p *PgSQL) DeleteSnapshot(ctx context.Context, name string) (bool, error) {
	res, err := p.Builder.Delete(snapshotsTable).
		Where(goqu.I("name").Eq(name)).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete snapshot in pg: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}
