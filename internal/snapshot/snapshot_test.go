package snapshot_test

import (
	"context"
	"errors"
	"testing"

	"domainvar/internal/snapshot"
	"domainvar/pkg/domain"
	"domainvar/pkg/restricted"
	"domainvar/pkg/serrors"
	"domainvar/pkg/storage"
	mockstorage "domainvar/pkg/storage/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*gomock.Controller, *mockstorage.MockStorage, snapshot.Service) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mockstorage.NewMockStorage(ctrl)

	return ctrl, st, snapshot.New(st)
}

// helper to wire Storage.WithTx to execute callback with a MockAllStorage.
func expectWithTx(
	t *testing.T,
	ctrl *gomock.Controller,
	m *mockstorage.MockStorage,
	fn func(tx *mockstorage.MockAllStorage)) {
	t.Helper()

	m.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cb func(storage.AllStorage) error) error {
			tx := mockstorage.NewMockAllStorage(ctrl)
			if fn != nil {
				fn(tx)
			}

			return cb(tx)
		},
	)
}

func TestService_Save(t *testing.T) {
	ctrl, st, s := newTestService(t)
	d := restricted.New([]string{"b", "a"})

	expectWithTx(t, ctrl, st, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().SnapshotByName(gomock.Any(), "letters").Return(nil, nil)
		tx.EXPECT().UpsertSnapshot(gomock.Any(), domain.Snapshot{
			Name:   "letters",
			Order:  "lexical",
			Values: []string{"a", "b"},
		}).DoAndReturn(func(_ context.Context, snap domain.Snapshot) (*domain.Snapshot, error) {
			return &snap, nil
		})
	})

	saved, err := s.Save(context.Background(), "letters", d, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, saved.Values)
}

func TestService_SaveOverwrites(t *testing.T) {
	ctrl, st, s := newTestService(t)
	d := restricted.New([]string{"z"})

	expectWithTx(t, ctrl, st, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().SnapshotByName(gomock.Any(), "letters").
			Return(&domain.Snapshot{Name: "letters", Values: []string{"a", "b"}}, nil)
		tx.EXPECT().UpsertSnapshot(gomock.Any(), gomock.Any()).
			Return(&domain.Snapshot{Name: "letters", Values: []string{"z"}}, nil)
	})

	saved, err := s.Save(context.Background(), "letters", d, "reverse")
	require.NoError(t, err)
	require.Equal(t, []string{"z"}, saved.Values)
}

func TestService_SaveValidation(t *testing.T) {
	_, _, s := newTestService(t)
	d := restricted.New([]string{"a"})

	_, err := s.Save(context.Background(), "", d, "")
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = s.Save(context.Background(), "x", nil, "")
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = s.Save(context.Background(), "x", d, "sideways")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestService_SaveStorageError(t *testing.T) {
	ctrl, st, s := newTestService(t)
	boom := errors.New("boom")

	expectWithTx(t, ctrl, st, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().SnapshotByName(gomock.Any(), "x").Return(nil, nil)
		tx.EXPECT().UpsertSnapshot(gomock.Any(), gomock.Any()).Return(nil, boom)
	})

	_, err := s.Save(context.Background(), "x", restricted.New([]string{"a"}), "")
	require.ErrorIs(t, err, boom)
}

func TestService_Load(t *testing.T) {
	_, st, s := newTestService(t)

	st.EXPECT().SnapshotByName(gomock.Any(), "present").
		Return(&domain.Snapshot{Name: "present"}, nil)
	st.EXPECT().SnapshotByName(gomock.Any(), "missing").Return(nil, nil)

	snap, err := s.Load(context.Background(), "present")
	require.NoError(t, err)
	require.Equal(t, "present", snap.Name)

	_, err = s.Load(context.Background(), "missing")
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestService_Restore(t *testing.T) {
	_, st, s := newTestService(t)

	st.EXPECT().SnapshotByName(gomock.Any(), "nums").
		Return(&domain.Snapshot{Name: "nums", Order: "numeric", Values: []string{"10", "9", "2"}}, nil)

	d, err := s.Restore(context.Background(), "nums")
	require.NoError(t, err)
	require.Equal(t, "nums", d.Name())
	require.Equal(t, []string{"2", "9", "10"}, d.Values())
}

func TestService_RestoreBrokenOrder(t *testing.T) {
	_, st, s := newTestService(t)

	st.EXPECT().SnapshotByName(gomock.Any(), "bad").
		Return(&domain.Snapshot{Name: "bad", Order: "sideways"}, nil)

	_, err := s.Restore(context.Background(), "bad")
	require.ErrorIs(t, err, serrors.ErrInternal)
	require.Equal(t, serrors.ErrInternal, serrors.KindOf(err))
}

func TestService_List(t *testing.T) {
	_, st, s := newTestService(t)

	st.EXPECT().Snapshots(gomock.Any()).Return([]domain.Snapshot{{Name: "a"}, {Name: "b"}}, nil)

	snaps, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 2)
}

func TestService_Delete(t *testing.T) {
	_, st, s := newTestService(t)

	st.EXPECT().DeleteSnapshot(gomock.Any(), "a").Return(true, nil)
	st.EXPECT().DeleteSnapshot(gomock.Any(), "b").Return(false, nil)

	require.NoError(t, s.Delete(context.Background(), "a"))
	require.ErrorIs(t, s.Delete(context.Background(), "b"), serrors.ErrNotFound)
}
