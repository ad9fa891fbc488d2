package allocator

import (
	"fmt"
	"maps"

	"github.com/viant/procsim/model/process"
)

// DefaultCapacityMB is the pool size used when none is configured
const DefaultCapacityMB = 1024

// Snapshot is a read-only copy of the allocator state
type Snapshot struct {
	CapacityMB   int         `json:"capacityMB" yaml:"capacityMB"`
	UsedMB       int         `json:"usedMB" yaml:"usedMB"`
	FreeMB       int         `json:"freeMB" yaml:"freeMB"`
	Reservations map[int]int `json:"reservations" yaml:"reservations"`
}

// Service allocates memory to processes
type Service struct {
	capacity     int
	used         int
	reservations map[int]int
}

// New creates an allocator with the supplied capacity
func New(capacityMB int) (*Service, error) {
	if capacityMB <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0 MB, got %d", process.ErrInvalidRequest, capacityMB)
	}
	return &Service{
		capacity:     capacityMB,
		reservations: make(map[int]int),
	}, nil
}

// Capacity returns the pool size
func (s *Service) Capacity() int { return s.capacity }

// Used returns the reserved total
func (s *Service) Used() int { return s.used }

// Available returns the unreserved total
func (s *Service) Available() int { return s.capacity - s.used }

// Utilization returns used memory as a percentage of capacity
func (s *Service) Utilization() float64 {
	return float64(s.used) / float64(s.capacity) * 100.0
}

// CanReserve reports whether amount could be reserved right now
func (s *Service) CanReserve(amount int) bool {
	return amount > 0 && amount <= s.Available()
}

// Reserve records a reservation for id. It returns false without error when
// the amount does not fit; the caller is expected to wait.
func (s *Service) Reserve(id, amount int) (bool, error) {
	if _, ok := s.reservations[id]; ok {
		return false, fmt.Errorf("%w: process %d already holds memory", process.ErrDuplicateReservation, id)
	}
	if amount <= 0 {
		return false, fmt.Errorf("%w: reservation must be > 0 MB, got %d", process.ErrInvalidRequest, amount)
	}
	if amount > s.Available() {
		return false, nil
	}
	s.reservations[id] = amount
	s.used += amount
	return true, nil
}

// Free releases the reservation held by id and returns its size, 0 if none
func (s *Service) Free(id int) int {
	amount, ok := s.reservations[id]
	if !ok {
		return 0
	}
	delete(s.reservations, id)
	s.used -= amount
	return amount
}

// Holds returns the amount reserved by id
func (s *Service) Holds(id int) (int, bool) {
	amount, ok := s.reservations[id]
	return amount, ok
}

// Snapshot returns a copy of the allocator state
func (s *Service) Snapshot() Snapshot {
	return Snapshot{
		CapacityMB:   s.capacity,
		UsedMB:       s.used,
		FreeMB:       s.Available(),
		Reservations: maps.Clone(s.reservations),
	}
}
