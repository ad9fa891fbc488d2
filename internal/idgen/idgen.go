package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier as string.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Sequence hands out monotonically increasing positive integers
type Sequence struct {
	last int
}

// NewSequence creates a sequence whose first value is start (values < 1 start at 1)
func NewSequence(start int) *Sequence {
	if start < 1 {
		start = 1
	}
	return &Sequence{last: start - 1}
}

// Next returns the next id
func (s *Sequence) Next() int {
	s.last++
	return s.last
}
