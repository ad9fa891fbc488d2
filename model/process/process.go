package process

import (
	"encoding/json"
	"fmt"
)

// Process represents a simulated process competing for memory and the CPU
type Process struct {
	id        int
	name      string
	memoryMB  int
	burstTime int
	state     State
	remaining int
	consumed  int
}

// Summary is a flat, serialisable view of a process
type Summary struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	MemoryMB  int    `json:"memoryMB" yaml:"memoryMB"`
	Duration  int    `json:"duration" yaml:"duration"`
	Consumed  int    `json:"consumed" yaml:"consumed"`
	Remaining int    `json:"remaining" yaml:"remaining"`
	State     State  `json:"state" yaml:"state"`
}

// New creates a process in NEW state
func New(id int, name string, memoryMB, burstTime int) (*Process, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: process id must be > 0, got %d", ErrInvalidRequest, id)
	}
	if memoryMB <= 0 {
		return nil, fmt.Errorf("%w: memory request must be > 0 MB, got %d", ErrInvalidRequest, memoryMB)
	}
	if burstTime <= 0 {
		return nil, fmt.Errorf("%w: cpu burst must be > 0, got %d", ErrInvalidRequest, burstTime)
	}
	return &Process{
		id:        id,
		name:      name,
		memoryMB:  memoryMB,
		burstTime: burstTime,
		state:     StateNew,
		remaining: burstTime,
	}, nil
}

// ID returns the process id
func (p *Process) ID() int { return p.id }

// Name returns the display name
func (p *Process) Name() string { return p.name }

// MemoryMB returns the requested memory
func (p *Process) MemoryMB() int { return p.memoryMB }

// BurstTime returns the CPU time the process needs
func (p *Process) BurstTime() int { return p.burstTime }

// State returns the current lifecycle state
func (p *Process) State() State { return p.state }

// Remaining returns the CPU time still to consume
func (p *Process) Remaining() int { return p.remaining }

// Consumed returns the CPU time already consumed
func (p *Process) Consumed() int { return p.consumed }

// Admit moves a NEW process to READY once its memory has been reserved
func (p *Process) Admit() error {
	switch p.state {
	case StateNew:
		p.state = StateReady
		return nil
	default:
		return p.transitionError("admit", StateNew)
	}
}

// Dispatch moves a READY process to RUNNING
func (p *Process) Dispatch() error {
	switch p.state {
	case StateReady:
		p.state = StateRunning
		return nil
	default:
		return p.transitionError("dispatch", StateReady)
	}
}

// Advance consumes up to delta units of CPU time. It returns true when the
// process terminated with this advance.
func (p *Process) Advance(delta int) (bool, error) {
	switch p.state {
	case StateRunning:
	default:
		return false, p.transitionError("advance", StateRunning)
	}
	if delta <= 0 {
		return false, fmt.Errorf("%w: process %d: time delta must be > 0, got %d", ErrInvalidRequest, p.id, delta)
	}
	consume := min(delta, p.remaining)
	p.remaining -= consume
	p.consumed += consume
	if p.remaining == 0 {
		p.state = StateTerminated
		return true, nil
	}
	return false, nil
}

// Cancel forces a live process to CANCELED; terminal processes are left untouched
func (p *Process) Cancel() {
	if p.state.IsTerminal() {
		return
	}
	p.state = StateCanceled
}

// Progress returns consumed/burst in the 0..1 range
func (p *Process) Progress() float64 {
	return float64(p.consumed) / float64(p.burstTime)
}

// Summary returns a flat copy of the process
func (p *Process) Summary() Summary {
	return Summary{
		ID:        p.id,
		Name:      p.name,
		MemoryMB:  p.memoryMB,
		Duration:  p.burstTime,
		Consumed:  p.consumed,
		Remaining: p.remaining,
		State:     p.state,
	}
}

// MarshalJSON encodes the process summary
func (p *Process) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Summary())
}

func (p *Process) String() string {
	return fmt.Sprintf("Process(id=%d, name=%q, memoryMB=%d, burst=%d, state=%s, remaining=%d)",
		p.id, p.name, p.memoryMB, p.burstTime, p.state, p.remaining)
}

func (p *Process) transitionError(op string, expect State) error {
	return fmt.Errorf("%w: process %d: cannot %s from %s, expected %s", ErrInvalidState, p.id, op, p.state, expect)
}
