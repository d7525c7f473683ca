package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a function that requires one.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrResourceLimit is returned when a script exceeds its CPU or memory budget.
	ErrResourceLimit = errors.New("lua resource limit exceeded")

	// ErrMissingFunction is returned when a renderer script does not define
	// one of the required global functions.
	ErrMissingFunction = errors.New("renderer function not defined")

	// ErrClosed is returned when a closed renderer is used.
	ErrClosed = errors.New("renderer closed")
)
