package health

import "errors"

var (
	// ErrCheckFailed heads the error Run returns when any check fails.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that was still running at the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked marks a check that panicked. The probe stays up.
	ErrCheckPanicked = errors.New("health: check panicked")
)
