package generator

import (
	"fmt"

	"github.com/viant/procsim/model/process"
)

// Config bounds generated process requests; bounds are inclusive
type Config struct {
	MinMemoryMB int   `json:"minMemoryMB" yaml:"minMemoryMB"`
	MaxMemoryMB int   `json:"maxMemoryMB" yaml:"maxMemoryMB"`
	MinDuration int   `json:"minDuration" yaml:"minDuration"`
	MaxDuration int   `json:"maxDuration" yaml:"maxDuration"`
	Seed        int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns the stock request ranges
func DefaultConfig() Config {
	return Config{
		MinMemoryMB: 20,
		MaxMemoryMB: 1000,
		MinDuration: 3,
		MaxDuration: 15,
	}
}

// Validate checks that both ranges are positive and ordered
func (c Config) Validate() error {
	if c.MinMemoryMB <= 0 || c.MaxMemoryMB < c.MinMemoryMB {
		return fmt.Errorf("%w: memory range [%d, %d]", process.ErrInvalidRequest, c.MinMemoryMB, c.MaxMemoryMB)
	}
	if c.MinDuration <= 0 || c.MaxDuration < c.MinDuration {
		return fmt.Errorf("%w: duration range [%d, %d]", process.ErrInvalidRequest, c.MinDuration, c.MaxDuration)
	}
	return nil
}
