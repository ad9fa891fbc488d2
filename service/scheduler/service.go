package scheduler

import (
	"fmt"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/queue"
)

// Location identifies where a process resides
type Location string

const (
	LocationNone    Location = ""
	LocationWaiting Location = "waiting"
	LocationReady   Location = "ready"
	LocationCPU     Location = "cpu"
)

// Snapshot is an ordered view of both queues plus the memory pool
type Snapshot struct {
	Ready   []int              `json:"ready" yaml:"ready"`
	Waiting []int              `json:"waiting" yaml:"waiting"`
	Memory  allocator.Snapshot `json:"memory" yaml:"memory"`
}

// Service is a FIFO scheduler backed by a memory allocator
type Service struct {
	allocator *allocator.Service
	waiting   *queue.FIFO[int, *process.Process]
	ready     *queue.FIFO[int, *process.Process]
}

// New creates a scheduler over the supplied allocator
func New(allocator *allocator.Service) *Service {
	return &Service{
		allocator: allocator,
		waiting:   queue.New[int, *process.Process](processID),
		ready:     queue.New[int, *process.Process](processID),
	}
}

// Allocator returns the underlying allocator
func (s *Service) Allocator() *allocator.Service {
	return s.allocator
}

// Create admits the process when its memory fits, otherwise queues it as waiting.
// It returns true when the process was admitted.
func (s *Service) Create(p *process.Process) (bool, error) {
	reserved, err := s.allocator.Reserve(p.ID(), p.MemoryMB())
	if err != nil {
		return false, fmt.Errorf("failed to create process %d: %w", p.ID(), err)
	}
	if !reserved {
		s.waiting.Push(p)
		return false, nil
	}
	if err = p.Admit(); err != nil {
		s.allocator.Free(p.ID())
		return false, fmt.Errorf("failed to create process %d: %w", p.ID(), err)
	}
	s.ready.Push(p)
	return true, nil
}

// RetryWaiting admits waiting processes from the head while they fit and
// returns them in admission order. A head that fails to admit stays at the
// head of the waiting queue without holding memory.
func (s *Service) RetryWaiting() ([]*process.Process, error) {
	var admitted []*process.Process
	for {
		head, ok := s.waiting.Peek()
		if !ok || !s.allocator.CanReserve(head.MemoryMB()) {
			break
		}
		if _, err := s.allocator.Reserve(head.ID(), head.MemoryMB()); err != nil {
			return admitted, fmt.Errorf("failed to admit process %d: %w", head.ID(), err)
		}
		if err := head.Admit(); err != nil {
			s.allocator.Free(head.ID())
			return admitted, fmt.Errorf("failed to admit process %d: %w", head.ID(), err)
		}
		s.waiting.Pop()
		s.ready.Push(head)
		admitted = append(admitted, head)
	}
	return admitted, nil
}

// Requeue puts a process taken with TakeNext back at the ready head
func (s *Service) Requeue(p *process.Process) {
	s.ready.PushFront(p)
}

// TakeNext pops the ready head, nil when nothing is ready
func (s *Service) TakeNext() *process.Process {
	p, _ := s.ready.Pop()
	return p
}

// HasPending returns true if either queue holds a process
func (s *Service) HasPending() bool {
	return s.waiting.Len() > 0 || s.ready.Len() > 0
}

// Lookup finds a queued process
func (s *Service) Lookup(id int) (*process.Process, Location) {
	if p, ok := s.ready.Lookup(id); ok {
		return p, LocationReady
	}
	if p, ok := s.waiting.Lookup(id); ok {
		return p, LocationWaiting
	}
	return nil, LocationNone
}

// Remove detaches a queued process without touching its reservation or state
func (s *Service) Remove(id int) (*process.Process, Location) {
	if p, ok := s.ready.Remove(id); ok {
		return p, LocationReady
	}
	if p, ok := s.waiting.Remove(id); ok {
		return p, LocationWaiting
	}
	return nil, LocationNone
}

// Ready returns the ready queue head first
func (s *Service) Ready() []*process.Process {
	return s.ready.Items()
}

// Waiting returns the waiting queue head first
func (s *Service) Waiting() []*process.Process {
	return s.waiting.Items()
}

// Snapshot returns ordered id lists and the allocator snapshot
func (s *Service) Snapshot() Snapshot {
	return Snapshot{
		Ready:   s.ready.Keys(),
		Waiting: s.waiting.Keys(),
		Memory:  s.allocator.Snapshot(),
	}
}

func processID(p *process.Process) int {
	return p.ID()
}
