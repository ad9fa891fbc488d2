package process

import (
	"fmt"
	"strings"
)

// Spec describes a process to be submitted, as entered by a user or read
// from a scenario file.
type Spec struct {
	Name     string `json:"name" yaml:"name"`
	MemoryMB int    `json:"memory_mb" yaml:"memory_mb"`
	Duration int    `json:"duration_s" yaml:"duration_s"`
}

// Validate rejects non-positive memory or duration
func (s *Spec) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: spec was nil", ErrInvalidRequest)
	}
	if s.MemoryMB <= 0 {
		return fmt.Errorf("%w: memory_mb must be > 0, got %d", ErrInvalidRequest, s.MemoryMB)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%w: duration_s must be > 0, got %d", ErrInvalidRequest, s.Duration)
	}
	return nil
}

// HasName returns true when the spec carries a non-blank name
func (s *Spec) HasName() bool {
	return strings.TrimSpace(s.Name) != ""
}
