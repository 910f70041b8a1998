// Package serrors provides semantic error kinds shared by the restricted
// variable core and the layers built on top of it. A kind is a comparable
// sentinel; an Error pairs a kind with an optional message and cause so callers
// can branch with errors.Is without parsing strings.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind with the given name.
func NewKind(name string) Kind { return kind{s: name} }

// Kinds raised by the domain/variable core.
var (
	// ErrLifecycleViolation reports a teardown ordering mistake: closing a
	// domain that still has subscribed variables, or subscribing to a domain
	// that has already been closed.
	ErrLifecycleViolation = NewKind("LIFECYCLE_VIOLATION")
	// ErrUnboundAccess reports reading or comparing a variable with no value.
	ErrUnboundAccess = NewKind("UNBOUND_ACCESS")
	// ErrLookupMiss reports binding a variable to a value its domain does not hold.
	ErrLookupMiss = NewKind("LOOKUP_MISS")
	// ErrReleased reports use of a variable after Release.
	ErrReleased = NewKind("RELEASED")
)

// Kinds used by the outer layers (storage, replay, CLI).
var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrBadRequest indicates the caller supplied invalid input.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrConflict indicates observed state disagrees with what was expected.
	ErrConflict = NewKind("CONFLICT")
	// ErrInternal indicates an unexpected failure.
	ErrInternal = NewKind("INTERNAL")
)

// allKinds lists the predefined kinds in declaration order.
var allKinds = []Kind{ //nolint: gochecknoglobals
	ErrLifecycleViolation,
	ErrUnboundAccess,
	ErrLookupMiss,
	ErrReleased,
	ErrNotFound,
	ErrBadRequest,
	ErrConflict,
	ErrInternal,
}

// Kinds returns every predefined kind.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)

	return out
}

// KindByName resolves a predefined kind from its name, e.g. "LOOKUP_MISS".
func KindByName(name string) (Kind, bool) {
	for _, k := range allKinds {
		if k.Error() == name {
			return k, true
		}
	}

	return nil, false
}

// KindOf returns the kind of the outermost *Error in err's chain. Errors that
// carry no *Error fall back to the first predefined kind err matches, or nil.
func KindOf(err error) Kind {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) && se.kind != nil {
		return se.kind
	}
	for _, k := range allKinds {
		if errors.Is(err, k) {
			return k
		}
	}

	return nil
}

// Error is a semantic error carrying a kind, an optional wrapped cause and an
// optional message. errors.Is and errors.As match either the kind or the cause.
//
// Error string formatting:
//   - If both msg and err are set: "<msg>: <err>"
//   - If only msg is set: "<msg>"
//   - If only err is set: "<err>"
//   - If neither set: the kind's Error() string.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a semantic error with the given kind and message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a semantic error with the given kind that wraps err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		if e.kind != nil {
			return e.kind.Error()
		}

		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches against either the kind or the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	if e.err != nil && errors.Is(e.err, target) {
		return true
	}

	return false
}

// As extracts either the kind or the wrapped cause.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}
	if e.err != nil && errors.As(e.err, target) {
		return true
	}

	return false
}

// Kind returns the kind associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }
