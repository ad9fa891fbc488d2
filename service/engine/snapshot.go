package engine

import "github.com/viant/procsim/service/allocator"

// CPU describes CPU occupancy; CurrentID is 0 when idle
type CPU struct {
	Busy      bool `json:"busy" yaml:"busy"`
	CurrentID int  `json:"currentId,omitempty" yaml:"currentId,omitempty"`
}

// Snapshot is a read-only aggregate of the engine state
type Snapshot struct {
	Tick     int                `json:"tick" yaml:"tick"`
	Ready    []int              `json:"ready" yaml:"ready"`
	Waiting  []int              `json:"waiting" yaml:"waiting"`
	Memory   allocator.Snapshot `json:"memory" yaml:"memory"`
	CPU      CPU                `json:"cpu" yaml:"cpu"`
	Finished []int              `json:"finished" yaml:"finished"`
	Canceled []int              `json:"canceled" yaml:"canceled"`
}
