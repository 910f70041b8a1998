package restricted

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotTable_StaleIdentityNeverResolves(t *testing.T) {
	var st slotTable[string]

	a := st.alloc("a")
	got, ok := st.get(a)
	require.True(t, ok)
	require.Equal(t, "a", got)

	st.release(a)
	_, ok = st.get(a)
	require.False(t, ok)

	// the freed slot is reused with a new generation
	b := st.alloc("b")
	require.Equal(t, a.index, b.index)
	require.NotEqual(t, a.gen, b.gen)

	_, ok = st.get(a)
	require.False(t, ok, "old identity must not see the new occupant")
	got, ok = st.get(b)
	require.True(t, ok)
	require.Equal(t, "b", got)
	require.Equal(t, 1, st.live())
}

func TestSlotTable_ZeroIdentity(t *testing.T) {
	var st slotTable[int]
	st.alloc(1)

	_, ok := st.get(Identity{})
	require.False(t, ok)
	require.True(t, Identity{}.IsZero())
	require.Equal(t, "<empty>", Identity{}.String())
	require.False(t, st.set(Identity{}, 3))
}

func TestSlotTable_GenerationWrapSkipsZero(t *testing.T) {
	var st slotTable[int]
	id := st.alloc(1)
	st.slots[id.index].gen = ^uint32(0)
	st.release(Identity{index: id.index, gen: ^uint32(0)})

	next := st.alloc(2)
	require.False(t, next.IsZero())
	require.Equal(t, uint32(1), next.gen)
}

func TestSlotTable_DoubleReleaseIsIgnored(t *testing.T) {
	var st slotTable[int]
	a := st.alloc(1)
	st.release(a)
	st.release(a)

	require.Len(t, st.free, 1)
	b := st.alloc(2)
	c := st.alloc(3)
	require.NotEqual(t, b.index, c.index)
}

func TestDomain_IdentityInvalidatedAfterRemove(t *testing.T) {
	d := New([]int{1, 2, 3})
	id, ok := d.lookup(2)
	require.True(t, ok)

	d.Remove(2)
	_, ok = d.resolve(id)
	require.False(t, ok)

	d.Insert(4)
	_, ok = d.resolve(id)
	require.False(t, ok, "reused slot must not resolve through a stale identity")
}
