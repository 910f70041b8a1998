package serrors_test

import (
	"errors"
	"fmt"
	"testing"

	"domainvar/pkg/serrors"

	"github.com/stretchr/testify/require"
)

type customError struct{ msg string }

func (e customError) Error() string { return e.msg }

func TestKindsDistinct(t *testing.T) {
	seen := map[serrors.Kind]bool{}
	for i, k := range serrors.Kinds() {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}

	require.NotEqual(t, serrors.ErrLookupMiss, serrors.ErrUnboundAccess)
}

func TestKindByName(t *testing.T) {
	k, ok := serrors.KindByName("LIFECYCLE_VIOLATION")
	require.True(t, ok)
	require.Equal(t, serrors.ErrLifecycleViolation, k)

	_, ok = serrors.KindByName("NOPE")
	require.False(t, ok)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("could not bind: %w", serrors.With(serrors.ErrLookupMiss, "value %q not in domain", "x"))
	require.Equal(t, serrors.ErrLookupMiss, serrors.KindOf(err))
	require.Nil(t, serrors.KindOf(errors.New("plain")))
	require.Nil(t, serrors.KindOf(nil))
}

func TestKindOf_OutermostWins(t *testing.T) {
	inner := serrors.With(serrors.ErrBadRequest, "unknown order %q", "sideways")
	err := fmt.Errorf("could not restore: %w",
		serrors.Wrap(serrors.ErrInternal, inner, "snapshot %q has an unusable order", "x"))

	require.Equal(t, serrors.ErrInternal, serrors.KindOf(err))
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestKindOf_BareKind(t *testing.T) {
	err := fmt.Errorf("closing: %w", serrors.ErrLifecycleViolation)
	require.Equal(t, serrors.ErrLifecycleViolation, serrors.KindOf(err))
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("db down")

	e1 := serrors.With(serrors.ErrLifecycleViolation, "%d variables still subscribed", 2)
	require.Equal(t, "2 variables still subscribed", e1.Error())

	e2 := serrors.Wrap(serrors.ErrNotFound, base, "loading snapshot")
	require.Equal(t, "loading snapshot: db down", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrUnboundAccess)
	require.Equal(t, "UNBOUND_ACCESS", e3.Error())
}

func TestIsMatchesKindAndWrapped(t *testing.T) {
	base := customError{"root cause"}
	e := serrors.Wrap(serrors.ErrNotFound, base, "reading")

	require.ErrorIs(t, e, serrors.ErrNotFound)
	require.ErrorIs(t, e, base)
	require.NotErrorIs(t, e, serrors.ErrReleased)
}

func TestAsMatchesKindAndWrapped(t *testing.T) {
	base := &customError{"root cause"}
	e := serrors.Wrap(serrors.ErrNotFound, base, "reading")

	var k serrors.Kind
	require.ErrorAs(t, e, &k)
	require.Equal(t, serrors.ErrNotFound, k)

	var ce *customError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, base, ce)
}

func TestAccessors(t *testing.T) {
	base := errors.New("boom")
	e := serrors.Wrap(serrors.ErrConflict, base, "expectation failed")
	require.Equal(t, serrors.ErrConflict, e.Kind())
	require.Equal(t, "expectation failed", e.Message())
	require.Equal(t, base, e.Cause())
}
