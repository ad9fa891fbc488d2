package report

import (
	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/engine"
	"github.com/viant/procsim/service/event"
)

// Option customises a built report
type Option func(r *Report)

// WithOrigin labels where the run came from, e.g. a scenario URL
func WithOrigin(origin string) Option {
	return func(r *Report) {
		r.Origin = origin
	}
}

// WithEvents attaches per-type event counts
func WithEvents(counts map[event.Type]int) Option {
	return func(r *Report) {
		if len(counts) == 0 {
			return
		}
		r.Events = make(map[event.Type]int, len(counts))
		for k, v := range counts {
			r.Events[k] = v
		}
	}
}

// Build summarises the current engine state
func Build(srv *engine.Service, options ...Option) *Report {
	ret := &Report{
		RunID:       idgen.New(),
		CreatedAt:   clock.Now(),
		CapacityMB:  srv.Capacity(),
		Ticks:       srv.Now(),
		Finished:    entries(srv, srv.Finished()),
		Canceled:    entries(srv, srv.Canceled()),
		Pending:     entries(srv, srv.Live()),
		Utilization: srv.UsageHistory(),
	}
	if n := len(ret.Finished); n > 0 {
		turnaround, wait := 0, 0
		for _, entry := range ret.Finished {
			turnaround += entry.TurnaroundTicks
			wait += entry.WaitTicks
		}
		ret.AvgTurnaround = float64(turnaround) / float64(n)
		ret.AvgWait = float64(wait) / float64(n)
		if ret.Ticks > 0 {
			ret.Throughput = float64(n) / float64(ret.Ticks)
		}
	}
	for _, point := range ret.Utilization {
		ret.PeakUtilization = max(ret.PeakUtilization, point)
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func entries(srv *engine.Service, processes []*process.Process) []*Entry {
	ret := make([]*Entry, 0, len(processes))
	for _, p := range processes {
		timeline, _ := srv.Timeline(p.ID())
		ret = append(ret, &Entry{
			Summary:         p.Summary(),
			Timeline:        timeline,
			TurnaroundTicks: timeline.Turnaround(),
			WaitTicks:       timeline.Wait(),
		})
	}
	return ret
}
