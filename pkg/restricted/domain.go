package restricted

import (
	"cmp"
	"iter"
	"slices"

	"domainvar/pkg/serrors"

	"go.uber.org/zap"
)

// Domain is an ordered, duplicate-free set of values shared by any number of
// Variables. It is the sole owner of element storage: variables only hold
// identities and are told synchronously when the element behind an identity is
// removed or replaced.
//
// A Domain must be torn down with Close once every Variable bound to it has
// been released or rebound elsewhere.
type Domain[V any] struct {
	order Order[V]
	slots slotTable[V]
	// index holds the live identities in ascending order of their values.
	index []Identity

	subs    map[uint64]*Variable[V]
	lastSub uint64
	closed  bool

	opts options
	log  *zap.Logger
}

// New creates a Domain over an ordered type using its natural order, seeded
// with values. Duplicate seed values collapse into one element.
func New[V cmp.Ordered](values []V, opts ...Option) *Domain[V] {
	return NewWithOrder(Natural[V](), values, opts...)
}

// NewWithOrder creates a Domain ordered by order, seeded with values.
func NewWithOrder[V any](order Order[V], values []V, opts ...Option) *Domain[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if o.name != "" {
		log = log.With(zap.String("domain", o.name))
	}

	d := &Domain[V]{
		order: order,
		index: make([]Identity, 0, len(values)),
		subs:  make(map[uint64]*Variable[V]),
		opts:  o,
		log:   log,
	}
	for _, v := range values {
		d.insert(v)
	}

	return d
}

// Name returns the label given with WithName.
func (d *Domain[V]) Name() string { return d.opts.name }

// Order returns the ordering the domain was created with.
func (d *Domain[V]) Order() Order[V] { return d.order }

// MissPolicy returns the lookup-miss policy of variables bound to d.
func (d *Domain[V]) MissPolicy() MissPolicy { return d.opts.missPolicy }

// Len returns the number of elements.
func (d *Domain[V]) Len() int { return len(d.index) }

// Subscribers returns the number of variables currently bound to d.
func (d *Domain[V]) Subscribers() int { return len(d.subs) }

// Closed reports whether Close has succeeded.
func (d *Domain[V]) Closed() bool { return d.closed }

// Contains reports whether an element equivalent to v is present.
func (d *Domain[V]) Contains(v V) bool {
	_, ok := d.search(v)

	return ok
}

// Insert adds v unless an equivalent element is already present and reports
// whether the domain changed. Insertion never invalidates an identity, so no
// subscriber is notified.
func (d *Domain[V]) Insert(v V) bool {
	_, added := d.insert(v)
	d.opts.recorder.RecordMutation(OpInsert, added)
	if added {
		d.log.Debug("inserted value", zap.Any("value", v), zap.Int("len", len(d.index)))
	}

	return added
}

// InsertMany inserts each value in turn and returns how many were added.
func (d *Domain[V]) InsertMany(values ...V) int {
	added := 0
	for _, v := range values {
		if d.Insert(v) {
			added++
		}
	}

	return added
}

// Remove erases the element equivalent to v. Every subscriber holding that
// element becomes empty before Remove returns. Removing an absent value is a
// no-op that returns false.
func (d *Domain[V]) Remove(v V) bool {
	pos, ok := d.search(v)
	if !ok {
		d.opts.recorder.RecordMutation(OpRemove, false)

		return false
	}

	id := d.index[pos]
	affected := d.deletionNotice(id)
	d.index = slices.Delete(d.index, pos, pos+1)
	d.slots.release(id)

	d.opts.recorder.RecordMutation(OpRemove, true)
	d.log.Debug("removed value",
		zap.Any("value", v),
		zap.Int("affected", affected),
		zap.Int("len", len(d.index)))

	return true
}

// RemoveMany removes each value in turn, notifying subscribers for every
// removal independently, and returns how many were removed.
func (d *Domain[V]) RemoveMany(values ...V) int {
	removed := 0
	for _, v := range values {
		if d.Remove(v) {
			removed++
		}
	}

	return removed
}

// Replace substitutes next for the element equivalent to old and reports
// whether old was present. Subscribers holding old are rebound to next and
// stay non-empty.
//
// If an element equivalent to next already exists its identity is reused, so
// the domain shrinks by one. If next is equivalent to old the stored value is
// overwritten in place and identities are unchanged.
func (d *Domain[V]) Replace(old, next V) bool {
	pos, ok := d.search(old)
	if !ok {
		d.opts.recorder.RecordMutation(OpReplace, false)

		return false
	}

	oldID := d.index[pos]
	stored, _ := d.slots.get(oldID)
	if d.order.Compare(stored, next) == 0 {
		d.slots.set(oldID, next)
		d.opts.recorder.RecordMutation(OpReplace, true)
		d.log.Debug("replaced value in place", zap.Any("old", old), zap.Any("new", next))

		return true
	}

	newID, added := d.insert(next)
	affected := d.replacementNotice(oldID, newID)
	d.erase(oldID)

	d.opts.recorder.RecordMutation(OpReplace, true)
	d.log.Debug("replaced value",
		zap.Any("old", old),
		zap.Any("new", next),
		zap.Bool("merged", !added),
		zap.Int("affected", affected),
		zap.Int("len", len(d.index)))

	return true
}

// Values returns a copy of the current contents in ascending order.
func (d *Domain[V]) Values() []V {
	out := make([]V, 0, len(d.index))
	for _, id := range d.index {
		out = append(out, d.slots.slots[id.index].value)
	}

	return out
}

// All iterates the contents in ascending order. The domain must not be mutated
// during iteration.
func (d *Domain[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, id := range d.index {
			if !yield(d.slots.slots[id.index].value) {
				return
			}
		}
	}
}

// Backward iterates the contents in descending order. The domain must not be
// mutated during iteration.
func (d *Domain[V]) Backward() iter.Seq[V] {
	return func(yield func(V) bool) {
		for i := len(d.index) - 1; i >= 0; i-- {
			if !yield(d.slots.slots[d.index[i].index].value) {
				return
			}
		}
	}
}

// Close tears the domain down. It fails with serrors.ErrLifecycleViolation
// while any variable is still subscribed; the domain is left untouched in that
// case and Close may be retried. Closing twice is a no-op.
func (d *Domain[V]) Close() error {
	if n := len(d.subs); n > 0 {
		return serrors.With(serrors.ErrLifecycleViolation,
			"cannot close domain %s: %d variable(s) still subscribed", d.label(), n)
	}
	if !d.closed {
		d.closed = true
		d.log.Debug("domain closed")
	}

	return nil
}

// MustClose is Close for teardown paths that cannot handle an error, such as
// deferred cleanup. A lifecycle violation there is a programming error and
// panics.
func (d *Domain[V]) MustClose() {
	if err := d.Close(); err != nil {
		panic(err)
	}
}

func (d *Domain[V]) label() string {
	if d.opts.name == "" {
		return "<unnamed>"
	}

	return "\"" + d.opts.name + "\""
}

// search finds the index position of the element equivalent to v, or the
// position v would be inserted at.
func (d *Domain[V]) search(v V) (int, bool) {
	return slices.BinarySearchFunc(d.index, v, func(id Identity, target V) int {
		return d.order.Compare(d.slots.slots[id.index].value, target)
	})
}

func (d *Domain[V]) lookup(v V) (Identity, bool) {
	pos, ok := d.search(v)
	if !ok {
		return Identity{}, false
	}

	return d.index[pos], true
}

func (d *Domain[V]) resolve(id Identity) (V, bool) {
	return d.slots.get(id)
}

// insert returns the identity of v's element, allocating one if needed.
func (d *Domain[V]) insert(v V) (Identity, bool) {
	pos, ok := d.search(v)
	if ok {
		return d.index[pos], false
	}

	id := d.slots.alloc(v)
	d.index = slices.Insert(d.index, pos, id)

	return id, true
}

func (d *Domain[V]) erase(id Identity) {
	v, ok := d.slots.get(id)
	if !ok {
		return
	}
	if pos, found := d.search(v); found && d.index[pos] == id {
		d.index = slices.Delete(d.index, pos, pos+1)
	}
	d.slots.release(id)
}

func (d *Domain[V]) subscribe(v *Variable[V]) (uint64, error) {
	if d.closed {
		return 0, serrors.With(serrors.ErrLifecycleViolation, "domain %s is closed", d.label())
	}

	d.lastSub++
	d.subs[d.lastSub] = v
	d.opts.recorder.RecordSubscribers(len(d.subs))

	return d.lastSub, nil
}

// unsubscribe is idempotent.
func (d *Domain[V]) unsubscribe(id uint64) {
	if _, ok := d.subs[id]; !ok {
		return
	}

	delete(d.subs, id)
	d.opts.recorder.RecordSubscribers(len(d.subs))
}

// deletionNotice empties every subscriber holding id and returns how many did.
func (d *Domain[V]) deletionNotice(id Identity) int {
	affected := 0
	for _, v := range d.subs {
		if v.deletionNotice(id) {
			affected++
		}
	}
	d.opts.recorder.RecordNotice(NoticeDeletion, len(d.subs), affected)

	return affected
}

// replacementNotice rebinds every subscriber holding old to next and returns
// how many were rebound.
func (d *Domain[V]) replacementNotice(old, next Identity) int {
	affected := 0
	for _, v := range d.subs {
		if v.replacementNotice(old, next) {
			affected++
		}
	}
	d.opts.recorder.RecordNotice(NoticeReplacement, len(d.subs), affected)

	return affected
}
