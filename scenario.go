package procsim

import (
	"context"
	"fmt"
	"sort"

	"github.com/viant/afs"
	"github.com/viant/procsim/model/process"
	"gopkg.in/yaml.v3"
)

// DefaultMaxSteps caps a scenario run when it sets no limit
const DefaultMaxSteps = 10000

// Arrival submits a process once At logical ticks have elapsed since the run started
type Arrival struct {
	At           int `json:"at" yaml:"at"`
	process.Spec `yaml:",inline"`
}

// CancelAt cancels the arrival named Name once At ticks have elapsed
type CancelAt struct {
	At   int    `json:"at" yaml:"at"`
	Name string `json:"name" yaml:"name"`
}

// Scenario is a replayable sequence of arrivals and cancellations
type Scenario struct {
	Name     string     `json:"name" yaml:"name"`
	MaxSteps int        `json:"maxSteps,omitempty" yaml:"maxSteps,omitempty"`
	Arrivals []Arrival  `json:"processes" yaml:"processes"`
	Cancels  []CancelAt `json:"cancels,omitempty" yaml:"cancels,omitempty"`
}

// Validate checks arrivals and that every cancel names exactly one arrival
func (s *Scenario) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: scenario was nil", process.ErrInvalidRequest)
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("%w: maxSteps must be >= 0, got %d", process.ErrInvalidRequest, s.MaxSteps)
	}
	names := map[string]int{}
	for i := range s.Arrivals {
		arrival := &s.Arrivals[i]
		if arrival.At < 0 {
			return fmt.Errorf("%w: process %d: at must be >= 0, got %d", process.ErrInvalidRequest, i, arrival.At)
		}
		if err := arrival.Validate(); err != nil {
			return fmt.Errorf("process %d: %w", i, err)
		}
		if arrival.HasName() {
			names[arrival.Name]++
		}
	}
	for _, cancel := range s.Cancels {
		if cancel.At < 0 {
			return fmt.Errorf("%w: cancel %q: at must be >= 0", process.ErrInvalidRequest, cancel.Name)
		}
		if names[cancel.Name] != 1 {
			return fmt.Errorf("%w: cancel %q must name exactly one process, matched %d", process.ErrInvalidRequest, cancel.Name, names[cancel.Name])
		}
	}
	return nil
}

// Steps returns the step limit
func (s *Scenario) Steps() int {
	if s.MaxSteps == 0 {
		return DefaultMaxSteps
	}
	return s.MaxSteps
}

// timeline returns arrivals and cancels ordered by tick, preserving file order on ties
func (s *Scenario) timeline() ([]Arrival, []CancelAt) {
	arrivals := append([]Arrival(nil), s.Arrivals...)
	cancels := append([]CancelAt(nil), s.Cancels...)
	sort.SliceStable(arrivals, func(i, j int) bool { return arrivals[i].At < arrivals[j].At })
	sort.SliceStable(cancels, func(i, j int) bool { return cancels[i].At < cancels[j].At })
	return arrivals, cancels
}

// LoadScenario reads a YAML (or JSON) scenario from URL
func LoadScenario(ctx context.Context, URL string) (*Scenario, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %v: %w", URL, err)
	}
	ret := &Scenario{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %v: %w", URL, err)
	}
	if ret.Name == "" {
		ret.Name = URL
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %v: %w", URL, err)
	}
	return ret, nil
}
