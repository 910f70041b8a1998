// Package ordering resolves order names, as written in config files, replay
// scripts and snapshots, into restricted.Order values over strings.
package ordering

import (
	"cmp"
	"strconv"
	"strings"

	"domainvar/pkg/restricted"
	"domainvar/pkg/serrors"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// Lexical orders strings byte-wise.
	Lexical = "lexical"
	// Reverse is Lexical reversed.
	Reverse = "reverse"
	// Numeric orders strings that parse as numbers by value, before every
	// non-numeric string. Non-numeric strings are ordered lexically.
	Numeric = "numeric"

	// CollatePrefix selects language-aware collation, e.g. "collate:de".
	CollatePrefix = "collate:"
	// CollateLoosePrefix selects collation that ignores case, width and
	// diacritics, e.g. "collate-loose:en". Values differing only in those
	// respects are equivalent and collapse into one domain element.
	CollateLoosePrefix = "collate-loose:"
)

// Default is the order used when none is named.
const Default = Lexical

// Parse returns the order registered under name. An empty name selects
// Default. Unknown names and malformed language tags fail with
// serrors.ErrBadRequest.
func Parse(name string) (restricted.Order[string], error) {
	switch name {
	case "", Lexical:
		return restricted.Natural[string](), nil
	case Reverse:
		return restricted.Reverse(restricted.Natural[string]()), nil
	case Numeric:
		return restricted.OrderFunc[string](compareNumeric), nil
	}

	if tag, ok := strings.CutPrefix(name, CollateLoosePrefix); ok {
		return collation(tag, collate.Loose)
	}
	if tag, ok := strings.CutPrefix(name, CollatePrefix); ok {
		return collation(tag)
	}

	return nil, serrors.With(serrors.ErrBadRequest, "unknown order %q", name)
}

// Canonical returns the form of name stored alongside saved values.
func Canonical(name string) string {
	if name == "" {
		return Default
	}

	return name
}

func collation(tag string, opts ...collate.Option) (restricted.Order[string], error) {
	t, err := language.Parse(tag)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid language tag %q", tag)
	}
	c := collate.New(t, opts...)

	return restricted.OrderFunc[string](c.CompareString), nil
}

func compareNumeric(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)

	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(fa, fb); c != 0 {
			return c
		}
		// "1" and "1.0" are distinct values
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
