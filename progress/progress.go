package progress

import (
	"sync"
	"time"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/service/event"
)

// Delta represents an incremental counter change
type Delta struct {
	Submitted  int
	Waited     int
	Admitted   int
	Dispatched int
	Completed  int
	Canceled   int
}

// DeltaOf returns the single-counter delta of an event type; unknown types yield a zero delta
func DeltaOf(eventType event.Type) Delta {
	switch eventType {
	case event.TypeSubmitted:
		return Delta{Submitted: 1}
	case event.TypeWaiting:
		return Delta{Waited: 1}
	case event.TypeAdmitted:
		return Delta{Admitted: 1}
	case event.TypeDispatched:
		return Delta{Dispatched: 1}
	case event.TypeCompleted:
		return Delta{Completed: 1}
	case event.TypeCanceled:
		return Delta{Canceled: 1}
	}
	return Delta{}
}

// Progress holds run counters
type Progress struct {
	StartedAt time.Time `json:"startedAt" yaml:"startedAt"`

	Submitted  int `json:"submitted" yaml:"submitted"`
	Waited     int `json:"waited" yaml:"waited"`
	Admitted   int `json:"admitted" yaml:"admitted"`
	Dispatched int `json:"dispatched" yaml:"dispatched"`
	Completed  int `json:"completed" yaml:"completed"`
	Canceled   int `json:"canceled" yaml:"canceled"`
}

// Pending returns submitted processes that neither completed nor were canceled
func (p Progress) Pending() int {
	return p.Submitted - p.Completed - p.Canceled
}

// Counts returns the counters keyed by event type
func (p Progress) Counts() map[event.Type]int {
	return map[event.Type]int{
		event.TypeSubmitted:  p.Submitted,
		event.TypeWaiting:    p.Waited,
		event.TypeAdmitted:   p.Admitted,
		event.TypeDispatched: p.Dispatched,
		event.TypeCompleted:  p.Completed,
		event.TypeCanceled:   p.Canceled,
	}
}

// Tracker updates a Progress. It is safe for concurrent use.
type Tracker struct {
	mux      sync.Mutex
	progress Progress
	onChange func(Progress)
}

// New creates a tracker; onChange, when set, receives a copy after every update
func New(onChange func(Progress)) *Tracker {
	return &Tracker{progress: Progress{StartedAt: clock.Now()}, onChange: onChange}
}

// Update applies d. The callback runs outside the critical section.
func (t *Tracker) Update(d Delta) {
	if t == nil {
		return
	}
	t.mux.Lock()
	t.progress.Submitted += d.Submitted
	t.progress.Waited += d.Waited
	t.progress.Admitted += d.Admitted
	t.progress.Dispatched += d.Dispatched
	t.progress.Completed += d.Completed
	t.progress.Canceled += d.Canceled
	snapshot := t.progress
	cb := t.onChange
	t.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters
func (t *Tracker) Snapshot() Progress {
	if t == nil {
		return Progress{}
	}
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.progress
}

// OnChange replaces the update callback; nil disables it
func (t *Tracker) OnChange(cb func(Progress)) {
	if t == nil {
		return
	}
	t.mux.Lock()
	t.onChange = cb
	t.mux.Unlock()
}
