package restricted

import "fmt"

// Identity names one stored element of a Domain independently of its value.
// The zero Identity refers to nothing and is what an empty Variable holds.
type Identity struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the empty identity.
func (id Identity) IsZero() bool { return id.gen == 0 }

// String implements fmt.Stringer.
func (id Identity) String() string {
	if id.IsZero() {
		return "<empty>"
	}

	return fmt.Sprintf("%d@%d", id.index, id.gen)
}

type slot[V any] struct {
	value V
	gen   uint32
	live  bool
}

// slotTable is an arena of element storage with stable indices. Generations
// start at 1 so the zero Identity never matches a slot.
type slotTable[V any] struct {
	slots []slot[V]
	free  []uint32
}

func (t *slotTable[V]) alloc(v V) Identity {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots)) //nolint: gosec
		t.slots = append(t.slots, slot[V]{})
	}

	s := &t.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.value = v
	s.live = true

	return Identity{index: idx, gen: s.gen}
}

// get resolves id, failing for the zero identity and for freed or reused slots.
func (t *slotTable[V]) get(id Identity) (V, bool) {
	var zero V
	if id.IsZero() || int(id.index) >= len(t.slots) {
		return zero, false
	}
	s := &t.slots[id.index]
	if !s.live || s.gen != id.gen {
		return zero, false
	}

	return s.value, true
}

// set overwrites the value stored under a live identity.
func (t *slotTable[V]) set(id Identity, v V) bool {
	if _, ok := t.get(id); !ok {
		return false
	}
	t.slots[id.index].value = v

	return true
}

func (t *slotTable[V]) release(id Identity) {
	if _, ok := t.get(id); !ok {
		return
	}

	s := &t.slots[id.index]
	var zero V
	s.value = zero
	s.live = false
	t.free = append(t.free, id.index)
}

func (t *slotTable[V]) live() int {
	return len(t.slots) - len(t.free)
}
