package availability

type lookupState int

// The zero value of Lookup is NotFound, never a spurious success.
const (
	lookupNotFound lookupState = iota
	lookupFound
	lookupFailed
)

// Lookup is the three-way outcome of a collaborator call: a value was found,
// the collaborator answered "nothing there", or the call itself failed.
// Keeping the three cases distinct is what lets the orchestrator apply the
// hard-vs-soft failure policy per collaborator instead of by convention.
type Lookup[T any] struct {
	value T
	state lookupState
	err   error
}

// Found wraps a successful lookup result.
func Found[T any](v T) Lookup[T] {
	return Lookup[T]{value: v, state: lookupFound}
}

// NotFound marks a lookup that completed but matched nothing.
func NotFound[T any]() Lookup[T] {
	return Lookup[T]{state: lookupNotFound}
}

// Failed marks a lookup whose call errored.
func Failed[T any](err error) Lookup[T] {
	return Lookup[T]{state: lookupFailed, err: err}
}

// Found reports whether a value is present.
func (l Lookup[T]) Found() bool { return l.state == lookupFound }

// NotFound reports whether the lookup completed without a match.
func (l Lookup[T]) NotFound() bool { return l.state == lookupNotFound }

// Err returns the call error, if any.
func (l Lookup[T]) Err() error { return l.err }

// Value returns the found value, or the zero value otherwise.
func (l Lookup[T]) Value() T { return l.value }

// ValueOr returns the found value, or def when absent or failed.
func (l Lookup[T]) ValueOr(def T) T {
	if l.state == lookupFound {
		return l.value
	}
	return def
}
