package procsim

import (
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/engine"
)

// View is a render-ready picture of the simulation
type View struct {
	Snapshot    engine.Snapshot   `json:"snapshot" yaml:"snapshot"`
	Running     *process.Summary  `json:"running,omitempty" yaml:"running,omitempty"`
	Ready       []process.Summary `json:"ready" yaml:"ready"`
	Waiting     []process.Summary `json:"waiting" yaml:"waiting"`
	Finished    []process.Summary `json:"finished" yaml:"finished"`
	Canceled    []process.Summary `json:"canceled" yaml:"canceled"`
	Utilization float64           `json:"utilization" yaml:"utilization"`
	History     []float64         `json:"history" yaml:"history"`
	Driver      string            `json:"driver" yaml:"driver"`
	Progress    progress.Progress `json:"progress" yaml:"progress"`
}

func newView(srv *engine.Service, driverState string, counters progress.Progress) *View {
	ret := &View{
		Snapshot:    srv.Snapshot(),
		Ready:       summaries(srv.Ready()),
		Waiting:     summaries(srv.Waiting()),
		Finished:    summaries(srv.Finished()),
		Canceled:    summaries(srv.Canceled()),
		Utilization: srv.Utilization(),
		History:     srv.UsageHistory(),
		Driver:      driverState,
		Progress:    counters,
	}
	if running := srv.Running(); running != nil {
		summary := running.Summary()
		ret.Running = &summary
	}
	return ret
}

func summaries(processes []*process.Process) []process.Summary {
	ret := make([]process.Summary, 0, len(processes))
	for _, p := range processes {
		ret = append(ret, p.Summary())
	}
	return ret
}
