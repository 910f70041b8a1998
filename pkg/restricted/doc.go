// Package restricted implements a shared, mutable domain of allowed values and
// the variables restricted to it.
//
// A Domain owns an ordered, duplicate-free set of values under a pluggable
// Order. A Variable is a lightweight handle bound to one Domain that refers to
// at most one of its elements. Variables subscribe to their Domain; when the
// Domain removes or replaces an element it notifies every subscriber before
// returning, so no Variable ever resolves to a value the Domain no longer holds.
//
// Elements are referred to by Identity, an index into a generation-checked
// slot table, rather than by address. A freed slot bumps its generation, so a
// stale Identity can never resolve.
//
// Basic usage:
//
//	d := restricted.New([]int{1, 2, 3})
//	v, _ := restricted.NewVariableOf(d, 2)
//	d.Replace(2, 5)
//	n, _ := v.Value() // 5
//	v.Release()
//	_ = d.Close()
//
// The package is not safe for concurrent use. Callers sharing a Domain across
// goroutines must serialize every mutating call, including variable creation,
// assignment and release.
package restricted
