// Package report summarises a simulation run and defines how runs are persisted.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/engine"
	"github.com/viant/procsim/service/event"
)

var (
	// ErrNotFound is returned when no report exists for a run id
	ErrNotFound = errors.New("report: not found")

	// ErrInvalidID is returned for an empty run id
	ErrInvalidID = errors.New("report: invalid run id")

	// ErrNilReport is returned when persisting a nil report
	ErrNilReport = errors.New("report: nil report")
)

// Repository persists reports keyed by run id
type Repository interface {
	Save(ctx context.Context, report *Report) error

	Load(ctx context.Context, runID string) (*Report, error)

	List(ctx context.Context) ([]*Report, error)
}

// Entry is one process with its timeline and derived waits
type Entry struct {
	process.Summary `yaml:",inline"`
	engine.Timeline `yaml:",inline"`
	TurnaroundTicks int `json:"turnaroundTicks" yaml:"turnaroundTicks"`
	WaitTicks       int `json:"waitTicks" yaml:"waitTicks"`
}

// Report aggregates a run
type Report struct {
	RunID           string             `json:"runId" yaml:"runId"`
	CreatedAt       time.Time          `json:"createdAt" yaml:"createdAt"`
	Origin          string             `json:"origin,omitempty" yaml:"origin,omitempty"`
	CapacityMB      int                `json:"capacityMB" yaml:"capacityMB"`
	Ticks           int                `json:"ticks" yaml:"ticks"`
	Finished        []*Entry           `json:"finished" yaml:"finished"`
	Canceled        []*Entry           `json:"canceled,omitempty" yaml:"canceled,omitempty"`
	Pending         []*Entry           `json:"pending,omitempty" yaml:"pending,omitempty"`
	AvgTurnaround   float64            `json:"avgTurnaround" yaml:"avgTurnaround"`
	AvgWait         float64            `json:"avgWait" yaml:"avgWait"`
	Throughput      float64            `json:"throughput" yaml:"throughput"`
	PeakUtilization float64            `json:"peakUtilization" yaml:"peakUtilization"`
	Utilization     []float64          `json:"utilization,omitempty" yaml:"utilization,omitempty"`
	Events          map[event.Type]int `json:"events,omitempty" yaml:"events,omitempty"`
}

// Clone returns a deep copy
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	ret := *r
	ret.Finished = cloneEntries(r.Finished)
	ret.Canceled = cloneEntries(r.Canceled)
	ret.Pending = cloneEntries(r.Pending)
	ret.Utilization = append([]float64(nil), r.Utilization...)
	if r.Events != nil {
		ret.Events = make(map[event.Type]int, len(r.Events))
		for k, v := range r.Events {
			ret.Events[k] = v
		}
	}
	return &ret
}

func cloneEntries(entries []*Entry) []*Entry {
	if entries == nil {
		return nil
	}
	ret := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		clone := *entry
		ret = append(ret, &clone)
	}
	return ret
}
