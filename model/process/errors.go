package process

import "errors"

// Invariant guard errors. None of them is returned by a correctly sequenced
// engine; callers detect them with errors.Is.
var (
	// ErrInvalidRequest is returned for non-positive memory, duration or time delta.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicateReservation is returned when memory is reserved twice for the same process id.
	ErrDuplicateReservation = errors.New("duplicate reservation")

	// ErrCPUBusy is returned when a process is loaded onto an occupied CPU.
	ErrCPUBusy = errors.New("cpu busy")

	// ErrInvalidState is returned when a lifecycle operation is invoked from the wrong state.
	ErrInvalidState = errors.New("invalid state")
)
