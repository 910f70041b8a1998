package restricted

import "cmp"

// Order is a strict total order over V expressed as a three-way comparison:
// negative when a sorts before b, zero when they are equivalent, positive
// otherwise. Equivalent values are treated as the same element by a Domain.
type Order[V any] interface {
	Compare(a, b V) int
}

// OrderFunc adapts an ordinary comparison function to Order.
type OrderFunc[V any] func(a, b V) int

// Compare implements Order.
func (f OrderFunc[V]) Compare(a, b V) int { return f(a, b) }

// Natural returns the natural ordering of an ordered type.
func Natural[V cmp.Ordered]() Order[V] {
	return OrderFunc[V](cmp.Compare[V])
}

// Reverse returns o with its direction flipped.
func Reverse[V any](o Order[V]) Order[V] {
	return OrderFunc[V](func(a, b V) int { return o.Compare(b, a) })
}

// By orders values by a derived key using the key's natural order.
func By[V any, K cmp.Ordered](key func(V) K) Order[V] {
	return OrderFunc[V](func(a, b V) int { return cmp.Compare(key(a), key(b)) })
}
