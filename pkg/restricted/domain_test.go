package restricted_test

import (
	"slices"
	"strings"
	"testing"

	"domainvar/pkg/restricted"
	mockrestricted "domainvar/pkg/restricted/mock"
	"domainvar/pkg/serrors"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func mustVar(t *testing.T, d *restricted.Domain[int], value int) *restricted.Variable[int] {
	t.Helper()

	v, err := restricted.NewVariableOf(d, value)
	require.NoError(t, err)

	return v
}

func TestDomain_NewCollapsesDuplicatesAndSorts(t *testing.T) {
	d := restricted.New([]int{3, 1, 2, 3, 1})
	require.Equal(t, []int{1, 2, 3}, d.Values())
	require.Equal(t, 3, d.Len())
}

func TestDomain_Contains(t *testing.T) {
	d := restricted.New([]int{1, 2, 3})
	require.True(t, d.Contains(2))
	require.False(t, d.Contains(4))
}

func TestDomain_Insert(t *testing.T) {
	d := restricted.New([]int{1, 3})

	require.True(t, d.Insert(2))
	require.False(t, d.Insert(2), "inserting an equivalent value must not add")
	require.Equal(t, []int{1, 2, 3}, d.Values())

	require.Equal(t, 2, d.InsertMany(0, 3, 4))
	require.Equal(t, []int{0, 1, 2, 3, 4}, d.Values())
}

func TestDomain_InsertDoesNotDisturbHandles(t *testing.T) {
	d := restricted.New([]int{10, 20})
	v := mustVar(t, d, 20)

	for i := range 50 {
		d.Insert(i)
	}

	got, err := v.Value()
	require.NoError(t, err)
	require.Equal(t, 20, got)

	v.Release()
	require.NoError(t, d.Close())
}

func TestDomain_RemovePropagatesDeletion(t *testing.T) {
	d := restricted.New([]int{1, 2, 3})
	a := mustVar(t, d, 2)
	b := mustVar(t, d, 2)
	c := mustVar(t, d, 1)

	require.True(t, d.Remove(2))

	require.False(t, a.HasValue())
	require.False(t, b.HasValue())
	require.False(t, d.Contains(2))

	got, err := c.Value()
	require.NoError(t, err)
	require.Equal(t, 1, got, "unrelated handle must be untouched")

	for _, v := range []*restricted.Variable[int]{a, b, c} {
		v.Release()
	}
	require.NoError(t, d.Close())
}

func TestDomain_RemoveAbsentIsNoop(t *testing.T) {
	d := restricted.New([]int{1, 2, 3})
	v := mustVar(t, d, 3)

	require.False(t, d.Remove(7))
	require.Equal(t, []int{1, 2, 3}, d.Values())
	require.True(t, v.HasValue())

	v.Release()
}

func TestDomain_RemoveMany(t *testing.T) {
	d := restricted.New([]int{1, 2, 3, 4})
	a := mustVar(t, d, 1)
	b := mustVar(t, d, 4)

	require.Equal(t, 2, d.RemoveMany(1, 9, 4))
	require.Equal(t, []int{2, 3}, d.Values())
	require.False(t, a.HasValue())
	require.False(t, b.HasValue())
}

func TestDomain_ReplacePropagatesAndPreservesValue(t *testing.T) {
	d := restricted.New([]int{1, 2, 3})
	v := mustVar(t, d, 2)
	other := mustVar(t, d, 1)

	require.True(t, d.Replace(2, 5))

	got, err := v.Value()
	require.NoError(t, err)
	require.Equal(t, 5, got)
	require.Equal(t, []int{1, 3, 5}, d.Values())

	got, err = other.Value()
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestDomain_ReplaceOntoExistingMergesIdentity(t *testing.T) {
	d := restricted.New([]int{1, 2, 3})
	fromTwo := mustVar(t, d, 2)
	atThree := mustVar(t, d, 3)

	require.True(t, d.Replace(2, 3))
	require.Equal(t, []int{1, 3}, d.Values())

	require.Equal(t, atThree.Identity(), fromTwo.Identity(), "both handles must share the single stored 3")
	eq, err := fromTwo.Equal(atThree)
	require.NoError(t, err)
	require.True(t, eq)

	// the merged element is still one element: removing it empties both
	require.True(t, d.Remove(3))
	require.False(t, fromTwo.HasValue())
	require.False(t, atThree.HasValue())
}

func TestDomain_ReplaceAbsentReturnsFalse(t *testing.T) {
	d := restricted.New([]int{1, 2, 3})
	require.False(t, d.Replace(9, 10))
	require.Equal(t, []int{1, 2, 3}, d.Values())
}

func TestDomain_ReplaceWithEquivalentValueKeepsIdentity(t *testing.T) {
	fold := restricted.OrderFunc[string](func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	d := restricted.NewWithOrder[string](fold, []string{"alpha", "beta"})
	v, err := restricted.NewVariableOf(d, "beta")
	require.NoError(t, err)
	before := v.Identity()

	require.True(t, d.Replace("beta", "BETA"))
	require.Equal(t, []string{"alpha", "BETA"}, d.Values())
	require.Equal(t, before, v.Identity())

	got, err := v.Value()
	require.NoError(t, err)
	require.Equal(t, "BETA", got)
}

func TestDomain_CustomOrder(t *testing.T) {
	d := restricted.NewWithOrder(restricted.Reverse(restricted.Natural[int]()), []int{1, 3, 2})
	require.Equal(t, []int{3, 2, 1}, d.Values())
	require.Equal(t, []int{3, 2, 1}, slices.Collect(d.All()))
	require.Equal(t, []int{1, 2, 3}, slices.Collect(d.Backward()))
}

func TestDomain_ByKeyOrder(t *testing.T) {
	type item struct {
		name string
		rank int
	}
	d := restricted.NewWithOrder(restricted.By(func(i item) int { return i.rank }), []item{
		{"c", 3}, {"a", 1}, {"b", 2},
	})
	require.Equal(t, "a", d.Values()[0].name)
	require.False(t, d.Insert(item{"other", 2}), "same key is the same element")
}

func TestDomain_ValuesIsACopy(t *testing.T) {
	d := restricted.New([]int{1, 2})
	vals := d.Values()
	vals[0] = 99
	require.Equal(t, []int{1, 2}, d.Values())
}

func TestDomain_AllStopsEarly(t *testing.T) {
	d := restricted.New([]int{1, 2, 3, 4})
	var seen []int
	for v := range d.All() {
		seen = append(seen, v)
		if v == 2 {
			break
		}
	}
	require.Equal(t, []int{1, 2}, seen)
}

func TestDomain_CloseOrdering(t *testing.T) {
	d := restricted.New([]int{1, 2}, restricted.WithName("teardown"))
	a := mustVar(t, d, 1)
	b, err := restricted.NewVariable(d)
	require.NoError(t, err)

	err = d.Close()
	require.ErrorIs(t, err, serrors.ErrLifecycleViolation)
	require.Contains(t, err.Error(), "2 variable(s)")
	require.False(t, d.Closed())

	a.Release()
	require.ErrorIs(t, d.Close(), serrors.ErrLifecycleViolation)

	b.Release()
	require.NoError(t, d.Close())
	require.True(t, d.Closed())
	require.NoError(t, d.Close(), "closing twice is a no-op")

	_, err = restricted.NewVariable(d)
	require.ErrorIs(t, err, serrors.ErrLifecycleViolation)
}

func TestDomain_MustClosePanicsWithSubscribers(t *testing.T) {
	d := restricted.New([]int{1})
	v := mustVar(t, d, 1)

	require.Panics(t, d.MustClose)

	v.Release()
	require.NotPanics(t, d.MustClose)
}

func TestDomain_RecorderReceivesActivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mockrestricted.NewMockRecorder(ctrl)

	d := restricted.New([]int{1, 2, 3}, restricted.WithRecorder(rec))

	gomock.InOrder(
		rec.EXPECT().RecordSubscribers(1),
		rec.EXPECT().RecordSubscribers(2),
		rec.EXPECT().RecordMutation(restricted.OpInsert, true),
		rec.EXPECT().RecordMutation(restricted.OpInsert, false),
		rec.EXPECT().RecordNotice(restricted.NoticeDeletion, 2, 1),
		rec.EXPECT().RecordMutation(restricted.OpRemove, true),
		rec.EXPECT().RecordMutation(restricted.OpRemove, false),
		rec.EXPECT().RecordNotice(restricted.NoticeReplacement, 2, 1),
		rec.EXPECT().RecordMutation(restricted.OpReplace, true),
		rec.EXPECT().RecordSubscribers(1),
		rec.EXPECT().RecordSubscribers(0),
	)

	a := mustVar(t, d, 1)
	b := mustVar(t, d, 2)
	d.Insert(4)
	d.Insert(4)
	d.Remove(1)
	d.Remove(1)
	d.Replace(2, 5)
	a.Release()
	b.Release()

	require.NoError(t, d.Close())
}

func TestDomain_LogsMutations(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := restricted.New([]int{1, 2}, restricted.WithLogger(zap.New(core)), restricted.WithName("logged"))
	v := mustVar(t, d, 2)

	d.Insert(3)
	d.Remove(2)
	d.Replace(1, 7)

	require.Equal(t, 1, logs.FilterMessage("inserted value").Len())
	removed := logs.FilterMessage("removed value").All()
	require.Len(t, removed, 1)
	require.Equal(t, int64(1), removed[0].ContextMap()["affected"])
	require.Equal(t, "logged", removed[0].ContextMap()["domain"])
	require.Equal(t, 1, logs.FilterMessage("replaced value").Len())

	v.Release()
}
