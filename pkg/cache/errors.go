package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors for cache operations.
var (
	// ErrEmptyKey is returned when Get is called with an empty key.
	ErrEmptyKey = errors.New("cache: empty key")

	// ErrNilFetch is returned when Get is called without a fetch function.
	ErrNilFetch = errors.New("cache: nil fetch function")

	// ErrTypeMismatch is returned by Fetch when the value stored under a key
	// is not of the requested type.
	ErrTypeMismatch = errors.New("cache: entry type mismatch")

	// ErrFetchPanicked is matched by PanicError.
	ErrFetchPanicked = errors.New("cache: fetch panicked")
)

// PanicError is delivered to every waiter of a fetch that panicked.
type PanicError struct {
	Value any
	Key   string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("cache: fetch for key %q panicked: %v", e.Key, e.Value)
}

// Is reports whether target is ErrFetchPanicked.
func (e *PanicError) Is(target error) bool {
	return target == ErrFetchPanicked
}
