package restricted

import (
	"fmt"

	"domainvar/pkg/serrors"
)

// Variable is a handle bound to one Domain that holds either no value or the
// identity of one element of that Domain. Many variables may hold the same
// element.
//
// A Variable is subscribed to its Domain from creation until Release, and is
// updated by the Domain when its element is removed (the variable becomes
// empty) or replaced (the variable follows the replacement). It never mutates
// the Domain itself.
//
// Variables are handles: copying the struct is not a copy of the variable. Use
// Clone, Move, Assign and MoveFrom instead.
type Variable[V any] struct {
	domain *Domain[V]
	// subID is the registry key in domain.subs, zero while unsubscribed.
	subID    uint64
	slot     Identity
	released bool
}

// NewVariable creates an empty variable subscribed to d.
func NewVariable[V any](d *Domain[V]) (*Variable[V], error) {
	if d == nil {
		return nil, serrors.With(serrors.ErrLifecycleViolation, "variable requires a domain")
	}

	v := &Variable[V]{domain: d}
	if err := v.subscribe(); err != nil {
		return nil, err
	}

	return v, nil
}

// NewVariableOf creates a variable subscribed to d holding the element
// equivalent to value. When value is absent the domain's MissPolicy applies:
// MissReport fails with serrors.ErrLookupMiss, MissIgnore returns an empty
// variable.
func NewVariableOf[V any](d *Domain[V], value V) (*Variable[V], error) {
	if d == nil {
		return nil, serrors.With(serrors.ErrLifecycleViolation, "variable requires a domain")
	}

	id, ok := d.lookup(value)
	if !ok && d.opts.missPolicy == MissReport {
		return nil, serrors.With(serrors.ErrLookupMiss, "value %v is not in domain %s", value, d.label())
	}

	v := &Variable[V]{domain: d, slot: id}
	if err := v.subscribe(); err != nil {
		return nil, err
	}

	return v, nil
}

// Domain returns the domain v is bound to, or nil once released.
func (v *Variable[V]) Domain() *Domain[V] { return v.domain }

// Subscribed reports whether v currently receives notices. A moved-from
// variable is not subscribed until it is given a value again.
func (v *Variable[V]) Subscribed() bool { return v.subID != 0 }

// Released reports whether Release has been called.
func (v *Variable[V]) Released() bool { return v.released }

// HasValue reports whether v holds an element.
func (v *Variable[V]) HasValue() bool {
	_, ok := v.Get()

	return ok
}

// Get returns the held value and true, or the zero value and false when v is
// empty.
func (v *Variable[V]) Get() (V, bool) {
	if v.released || v.slot.IsZero() {
		var zero V

		return zero, false
	}

	return v.domain.resolve(v.slot)
}

// Value returns a copy of the held value. It fails with
// serrors.ErrUnboundAccess when v is empty.
func (v *Variable[V]) Value() (V, error) {
	if v.released {
		var zero V

		return zero, serrors.KindOnly(serrors.ErrReleased)
	}

	val, ok := v.Get()
	if !ok {
		return val, serrors.With(serrors.ErrUnboundAccess, "variable has no value")
	}

	return val, nil
}

// Identity returns the identity v holds, or the zero Identity.
func (v *Variable[V]) Identity() Identity { return v.slot }

// Clear empties v. It stays subscribed.
func (v *Variable[V]) Clear() {
	v.slot = Identity{}
}

// Set binds v to the element equivalent to value in its current domain. On a
// miss, MissReport fails with serrors.ErrLookupMiss and leaves v unchanged;
// MissIgnore empties v.
func (v *Variable[V]) Set(value V) error {
	if v.released {
		return serrors.KindOnly(serrors.ErrReleased)
	}

	id, ok := v.domain.lookup(value)
	if !ok {
		if v.domain.opts.missPolicy == MissReport {
			return serrors.With(serrors.ErrLookupMiss, "value %v is not in domain %s", value, v.domain.label())
		}
		v.slot = Identity{}

		return nil
	}

	if err := v.subscribe(); err != nil {
		return err
	}
	v.slot = id

	return nil
}

// Clone returns a new variable bound to the same domain and element as v with
// its own subscription. The two evolve independently afterwards.
func (v *Variable[V]) Clone() (*Variable[V], error) {
	if v.released {
		return nil, serrors.KindOnly(serrors.ErrReleased)
	}

	c := &Variable[V]{domain: v.domain, slot: v.slot}
	if err := c.subscribe(); err != nil {
		return nil, err
	}

	return c, nil
}

// Move returns a new variable that takes over v's element and subscription.
// v is left empty and unsubscribed but remains usable.
func (v *Variable[V]) Move() (*Variable[V], error) {
	if v.released {
		return nil, serrors.KindOnly(serrors.ErrReleased)
	}

	m := &Variable[V]{domain: v.domain}
	if err := m.MoveFrom(v); err != nil {
		return nil, err
	}

	return m, nil
}

// Assign makes v a copy of src: v leaves its own domain, subscribes to src's
// domain and holds src's element. On error v is unchanged.
func (v *Variable[V]) Assign(src *Variable[V]) error {
	if v.released || src.released {
		return serrors.KindOnly(serrors.ErrReleased)
	}
	if v == src {
		return nil
	}

	if src.domain != v.domain || v.subID == 0 {
		id, err := src.domain.subscribe(v)
		if err != nil {
			return err
		}
		v.unsubscribe()
		v.domain = src.domain
		v.subID = id
	}
	v.slot = src.slot

	return nil
}

// MoveFrom makes v take over src's domain, element and subscription. src is
// left empty and unsubscribed but remains usable. On error v is unchanged.
func (v *Variable[V]) MoveFrom(src *Variable[V]) error {
	if v.released || src.released {
		return serrors.KindOnly(serrors.ErrReleased)
	}
	if v == src {
		return nil
	}

	if src.subID == 0 {
		// nothing to transfer; src is already empty
		return v.Assign(src)
	}

	v.unsubscribe()
	v.domain = src.domain
	v.slot = src.slot
	v.subID = src.subID
	v.domain.subs[v.subID] = v

	src.subID = 0
	src.slot = Identity{}

	return nil
}

// Release unsubscribes v and makes it unusable. It is the explicit form of
// destroying a variable and must be called before the domain is closed.
// Releasing twice is a no-op.
func (v *Variable[V]) Release() {
	if v.released {
		return
	}

	v.unsubscribe()
	v.slot = Identity{}
	v.domain = nil
	v.released = true
}

// Compare orders v against o using v's domain order. Both must hold a value;
// otherwise it fails with serrors.ErrUnboundAccess.
func (v *Variable[V]) Compare(o *Variable[V]) (int, error) {
	a, err := v.Value()
	if err != nil {
		return 0, fmt.Errorf("left operand: %w", err)
	}
	b, err := o.Value()
	if err != nil {
		return 0, fmt.Errorf("right operand: %w", err)
	}

	return v.domain.order.Compare(a, b), nil
}

// Equal reports whether v and o hold equivalent values.
func (v *Variable[V]) Equal(o *Variable[V]) (bool, error) {
	return v.compareWith(o, func(c int) bool { return c == 0 })
}

// NotEqual reports whether v and o hold different values.
func (v *Variable[V]) NotEqual(o *Variable[V]) (bool, error) {
	return v.compareWith(o, func(c int) bool { return c != 0 })
}

// Less reports whether v sorts before o.
func (v *Variable[V]) Less(o *Variable[V]) (bool, error) {
	return v.compareWith(o, func(c int) bool { return c < 0 })
}

// Greater reports whether v sorts after o.
func (v *Variable[V]) Greater(o *Variable[V]) (bool, error) {
	return v.compareWith(o, func(c int) bool { return c > 0 })
}

// LessOrEqual reports whether v does not sort after o.
func (v *Variable[V]) LessOrEqual(o *Variable[V]) (bool, error) {
	return v.compareWith(o, func(c int) bool { return c <= 0 })
}

// GreaterOrEqual reports whether v does not sort before o.
func (v *Variable[V]) GreaterOrEqual(o *Variable[V]) (bool, error) {
	return v.compareWith(o, func(c int) bool { return c >= 0 })
}

// String implements fmt.Stringer.
func (v *Variable[V]) String() string {
	switch val, ok := v.Get(); {
	case v.released:
		return "<released>"
	case !ok:
		return "<empty>"
	default:
		return fmt.Sprint(val)
	}
}

func (v *Variable[V]) compareWith(o *Variable[V], pred func(int) bool) (bool, error) {
	c, err := v.Compare(o)
	if err != nil {
		return false, err
	}

	return pred(c), nil
}

func (v *Variable[V]) subscribe() error {
	if v.subID != 0 {
		return nil
	}

	id, err := v.domain.subscribe(v)
	if err != nil {
		return err
	}
	v.subID = id

	return nil
}

func (v *Variable[V]) unsubscribe() {
	if v.subID == 0 {
		return
	}

	v.domain.unsubscribe(v.subID)
	v.subID = 0
}

func (v *Variable[V]) deletionNotice(id Identity) bool {
	if v.slot != id {
		return false
	}
	v.slot = Identity{}

	return true
}

func (v *Variable[V]) replacementNotice(old, next Identity) bool {
	if v.slot != old {
		return false
	}
	v.slot = next

	return true
}
