package postgres_test

import (
	"context"
	"errors"
	"testing"

	"domainvar/pkg/domain"
	"domainvar/pkg/storage"
	"domainvar/pkg/storage/postgres"

	"github.com/stretchr/testify/require"
)

func snapshotExists(t *testing.T, pg *postgres.PgSQL, name string) bool {
	t.Helper()
	res, err := pg.SnapshotByName(context.Background(), name)
	require.NoError(t, err)

	return res != nil
}

func TestPgSQL_BeginAndAlreadyInTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)

	inner, ok := tx.(*postgres.PgSQL)
	require.True(t, ok)

	_, err = inner.Begin(ctx)
	require.ErrorIs(t, err, storage.ErrAlreadyInTx)

	require.NoError(t, inner.Rollback())
}

func TestPgSQL_CommitAndRollback(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.ErrorIs(t, pg.Commit(), storage.ErrNotInTx)
	require.ErrorIs(t, pg.Rollback(), storage.ErrNotInTx)

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.UpsertSnapshot(ctx, domain.Snapshot{Name: "committed", Order: "lexical"})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.True(t, snapshotExists(t, pg, "committed"))

	tx, err = pg.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.UpsertSnapshot(ctx, domain.Snapshot{Name: "rolled-back", Order: "lexical"})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	require.False(t, snapshotExists(t, pg, "rolled-back"))
}

func TestPgSQL_WithTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	err := pg.WithTx(ctx, func(s storage.AllStorage) error {
		_, e := s.UpsertSnapshot(ctx, domain.Snapshot{Name: "kept", Order: "lexical"})

		return e
	})
	require.NoError(t, err)
	require.True(t, snapshotExists(t, pg, "kept"))

	boom := errors.New("boom")
	err = pg.WithTx(ctx, func(s storage.AllStorage) error {
		_, _ = s.UpsertSnapshot(ctx, domain.Snapshot{Name: "discarded", Order: "lexical"})

		return boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, snapshotExists(t, pg, "discarded"))
}
