package procsim

import "errors"

var (
	// ErrDriverRunning is returned when a manual operation is attempted while the interval driver runs.
	ErrDriverRunning = errors.New("interval driver is running")

	// ErrStepLimit is returned when a run stops at its step limit with processes still pending.
	ErrStepLimit = errors.New("step limit reached")
)
