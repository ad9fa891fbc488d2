// Package cpu models a single processing unit that runs one process at a time.
package cpu

import (
	"fmt"

	"github.com/viant/procsim/model/process"
)

// Service is a single CPU
type Service struct {
	current *process.Process
	ticks   int
}

// New creates an idle CPU
func New() *Service {
	return &Service{}
}

// Load dispatches p onto the CPU
func (s *Service) Load(p *process.Process) error {
	if s.current != nil {
		return fmt.Errorf("%w: process %d is running, cannot load %d", process.ErrCPUBusy, s.current.ID(), p.ID())
	}
	if err := p.Dispatch(); err != nil {
		return fmt.Errorf("failed to load process %d: %w", p.ID(), err)
	}
	s.current = p
	return nil
}

// Tick advances the current process by one unit and returns it when it completes
func (s *Service) Tick() (*process.Process, error) {
	s.ticks++
	if s.current == nil {
		return nil, nil
	}
	completed, err := s.current.Advance(1)
	if err != nil {
		return nil, fmt.Errorf("failed to advance process %d: %w", s.current.ID(), err)
	}
	if !completed {
		return nil, nil
	}
	done := s.current
	s.current = nil
	return done, nil
}

// Unload releases the current process without changing its state
func (s *Service) Unload() *process.Process {
	p := s.current
	s.current = nil
	return p
}

// IsIdle returns true when no process is loaded
func (s *Service) IsIdle() bool {
	return s.current == nil
}

// Current returns the running process or nil
func (s *Service) Current() *process.Process {
	return s.current
}

// Ticks returns the number of ticks elapsed, idle ones included
func (s *Service) Ticks() int {
	return s.ticks
}
