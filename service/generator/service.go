// Package generator produces random process requests from a seedable source.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/viant/procsim/model/process"
)

// Option customises the generator
type Option func(*Service)

// WithRand injects the random source
func WithRand(rnd *rand.Rand) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

// WithNamePrefix sets the prefix of generated names
func WithNamePrefix(prefix string) Option {
	return func(s *Service) {
		s.prefix = prefix
	}
}

// Service generates random process specs
type Service struct {
	config  Config
	rnd     *rand.Rand
	prefix  string
	counter int
}

// New creates a generator. A zero Seed with no injected source seeds from the wall clock.
func New(config Config, options ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config, prefix: "Process"}
	for _, opt := range options {
		opt(ret)
	}
	if ret.rnd == nil {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		ret.rnd = rand.New(rand.NewSource(seed))
	}
	return ret, nil
}

// Next returns a spec named "<prefix> <n>" with memory and duration drawn from the configured ranges
func (s *Service) Next() process.Spec {
	s.counter++
	return process.Spec{
		Name:     fmt.Sprintf("%s %d", s.prefix, s.counter),
		MemoryMB: between(s.rnd, s.config.MinMemoryMB, s.config.MaxMemoryMB),
		Duration: between(s.rnd, s.config.MinDuration, s.config.MaxDuration),
	}
}

// Batch returns n consecutive specs
func (s *Service) Batch(n int) []process.Spec {
	ret := make([]process.Spec, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, s.Next())
	}
	return ret
}

// Generated returns how many specs were produced
func (s *Service) Generated() int {
	return s.counter
}

func between(rnd *rand.Rand, lo, hi int) int {
	return lo + rnd.Intn(hi-lo+1)
}
