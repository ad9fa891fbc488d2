package engine

// Timeline records the logical tick of each lifecycle transition; -1 marks a
// transition that has not happened
type Timeline struct {
	Submitted  int `json:"submitted" yaml:"submitted"`
	Admitted   int `json:"admitted" yaml:"admitted"`
	Dispatched int `json:"dispatched" yaml:"dispatched"`
	Finished   int `json:"finished" yaml:"finished"`
	Canceled   int `json:"canceled" yaml:"canceled"`
}

func newTimeline(submitted int) *Timeline {
	return &Timeline{Submitted: submitted, Admitted: -1, Dispatched: -1, Finished: -1, Canceled: -1}
}

// Turnaround returns ticks from submission to completion, -1 when unfinished
func (t Timeline) Turnaround() int {
	if t.Finished < 0 {
		return -1
	}
	return t.Finished - t.Submitted
}

// Wait returns ticks from submission to first dispatch, -1 when never dispatched
func (t Timeline) Wait() int {
	if t.Dispatched < 0 {
		return -1
	}
	return t.Dispatched - t.Submitted
}

// MemoryWait returns ticks spent waiting for memory, -1 when never admitted
func (t Timeline) MemoryWait() int {
	if t.Admitted < 0 {
		return -1
	}
	return t.Admitted - t.Submitted
}
