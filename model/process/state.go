package process

import (
	"fmt"
	"strings"
)

// State represents the lifecycle state of a process
type State uint8

const (
	StateNew State = iota
	StateReady
	StateRunning
	StateTerminated
	StateCanceled
)

// String returns the upper-case state name
func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateTerminated:
		return "TERMINATED"
	case StateCanceled:
		return "CANCELED"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// IsTerminal returns true for states that close the process history
func (s State) IsTerminal() bool {
	switch s {
	case StateTerminated, StateCanceled:
		return true
	case StateNew, StateReady, StateRunning:
		return false
	default:
		return false
	}
}

// IsValid returns true when s is one of the declared states
func (s State) IsValid() bool {
	switch s {
	case StateNew, StateReady, StateRunning, StateTerminated, StateCanceled:
		return true
	default:
		return false
	}
}

// MarshalText encodes the state name
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: unknown state %d", ErrInvalidState, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name (case-insensitive)
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState converts a state name to State
func ParseState(name string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NEW":
		return StateNew, nil
	case "READY":
		return StateReady, nil
	case "RUNNING":
		return StateRunning, nil
	case "TERMINATED":
		return StateTerminated, nil
	case "CANCELED", "CANCELLED":
		return StateCanceled, nil
	}
	return StateNew, fmt.Errorf("%w: unknown state %q", ErrInvalidState, name)
}
