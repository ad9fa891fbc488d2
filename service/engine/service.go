package engine

import (
	"context"
	"fmt"

	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/cpu"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/scheduler"
	"github.com/viant/procsim/tracing"
	"go.uber.org/zap"
)

// Service is the simulation engine
type Service struct {
	allocator *allocator.Service
	scheduler *scheduler.Service
	cpu       *cpu.Service
	ids       *idgen.Sequence
	processes map[int]*process.Process
	timelines map[int]*Timeline
	finished  []*process.Process
	canceled  []*process.Process
	history   *history
	listeners []Listener
	publisher *event.Publisher[process.Summary]
	logger    *zap.Logger
}

// New creates an engine with a memory pool of capacityMB
func New(capacityMB int, options ...Option) (*Service, error) {
	alloc, err := allocator.New(capacityMB)
	if err != nil {
		return nil, err
	}
	ret := &Service{
		allocator: alloc,
		scheduler: scheduler.New(alloc),
		cpu:       cpu.New(),
		ids:       idgen.NewSequence(1),
		processes: make(map[int]*process.Process),
		timelines: make(map[int]*Timeline),
		history:   newHistory(DefaultHistorySize),
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

// NewProcess creates a NEW process with the next engine id
func (s *Service) NewProcess(name string, memoryMB, burstTime int) (*process.Process, error) {
	return process.New(s.ids.Next(), name, memoryMB, burstTime)
}

// Add submits a NEW process; it is admitted immediately when its memory fits, otherwise it waits
func (s *Service) Add(ctx context.Context, p *process.Process) error {
	if p == nil {
		return fmt.Errorf("%w: process was nil", process.ErrInvalidRequest)
	}
	if p.State() != process.StateNew {
		return fmt.Errorf("%w: process %d must be %s to be added, was %s", process.ErrInvalidState, p.ID(), process.StateNew, p.State())
	}
	if _, ok := s.processes[p.ID()]; ok {
		return fmt.Errorf("%w: process %d was already added", process.ErrInvalidState, p.ID())
	}
	admitted, err := s.scheduler.Create(p)
	if err != nil {
		return err
	}
	now := s.Now()
	s.processes[p.ID()] = p
	timeline := newTimeline(now)
	s.timelines[p.ID()] = timeline
	s.emit(ctx, event.TypeSubmitted, p)
	if admitted {
		timeline.Admitted = now
		s.emit(ctx, event.TypeAdmitted, p)
		return nil
	}
	s.emit(ctx, event.TypeWaiting, p)
	return nil
}

// Step advances the simulation by one logical time unit
func (s *Service) Step(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.step", "INTERNAL")
	span.WithInt("tick", s.Now())
	defer func() { tracing.EndSpan(span, err) }()

	if s.cpu.IsIdle() {
		if next := s.scheduler.TakeNext(); next != nil {
			if err = s.cpu.Load(next); err != nil {
				s.scheduler.Requeue(next)
				return err
			}
			s.timelines[next.ID()].Dispatched = s.Now()
			span.WithInt("dispatched", next.ID())
			s.emit(ctx, event.TypeDispatched, next)
		}
	}

	done, err := s.cpu.Tick()
	if err != nil {
		return err
	}
	if done != nil {
		s.allocator.Free(done.ID())
		s.finished = append(s.finished, done)
		s.timelines[done.ID()].Finished = s.Now()
		span.WithInt("completed", done.ID())
		s.emit(ctx, event.TypeCompleted, done)
	}

	admitted, err := s.scheduler.RetryWaiting()
	for _, p := range admitted {
		s.timelines[p.ID()].Admitted = s.Now()
		s.emit(ctx, event.TypeAdmitted, p)
	}
	if err != nil {
		return err
	}
	span.WithInt("admitted", len(admitted))
	s.history.add(s.allocator.Utilization())
	return nil
}

// Cancel removes a live process from wherever it resides and releases its memory.
// It returns false when id is unknown, finished or already canceled.
func (s *Service) Cancel(ctx context.Context, id int) bool {
	p, location := s.scheduler.Remove(id)
	if p == nil {
		if current := s.cpu.Current(); current != nil && current.ID() == id {
			p = s.cpu.Unload()
			location = scheduler.LocationCPU
		}
	}
	if p == nil {
		return false
	}
	released := s.allocator.Free(id)
	p.Cancel()
	s.canceled = append(s.canceled, p)
	s.timelines[id].Canceled = s.Now()
	s.logger.Debug("process canceled",
		zap.Int("id", id),
		zap.String("location", string(location)),
		zap.Int("releasedMB", released))
	s.emit(ctx, event.TypeCanceled, p)
	return true
}

// IsActive returns true while any process is queued or running
func (s *Service) IsActive() bool {
	return s.scheduler.HasPending() || !s.cpu.IsIdle()
}

// Snapshot aggregates the scheduler, CPU and history state
func (s *Service) Snapshot() Snapshot {
	schedulerSnapshot := s.scheduler.Snapshot()
	ret := Snapshot{
		Tick:     s.Now(),
		Ready:    schedulerSnapshot.Ready,
		Waiting:  schedulerSnapshot.Waiting,
		Memory:   schedulerSnapshot.Memory,
		Finished: ids(s.finished),
		Canceled: ids(s.canceled),
	}
	if current := s.cpu.Current(); current != nil {
		ret.CPU = CPU{Busy: true, CurrentID: current.ID()}
	}
	return ret
}

// Now returns the logical time, the number of steps taken
func (s *Service) Now() int {
	return s.cpu.Ticks()
}

// Capacity returns the memory pool size
func (s *Service) Capacity() int {
	return s.allocator.Capacity()
}

// Utilization returns current memory use as a percentage of capacity
func (s *Service) Utilization() float64 {
	return s.allocator.Utilization()
}

// Process returns any process ever added
func (s *Service) Process(id int) (*process.Process, bool) {
	p, ok := s.processes[id]
	return p, ok
}

// Timeline returns the transition ticks of a process
func (s *Service) Timeline(id int) (Timeline, bool) {
	t, ok := s.timelines[id]
	if !ok {
		return Timeline{}, false
	}
	return *t, true
}

// Running returns the process on the CPU or nil
func (s *Service) Running() *process.Process {
	return s.cpu.Current()
}

// Ready returns the ready queue head first
func (s *Service) Ready() []*process.Process {
	return s.scheduler.Ready()
}

// Waiting returns the waiting queue head first
func (s *Service) Waiting() []*process.Process {
	return s.scheduler.Waiting()
}

// Finished returns completed processes in completion order
func (s *Service) Finished() []*process.Process {
	return append([]*process.Process(nil), s.finished...)
}

// Canceled returns canceled processes in cancel order
func (s *Service) Canceled() []*process.Process {
	return append([]*process.Process(nil), s.canceled...)
}

// Live returns the running process followed by the ready and waiting queues
func (s *Service) Live() []*process.Process {
	var ret []*process.Process
	if current := s.cpu.Current(); current != nil {
		ret = append(ret, current)
	}
	ret = append(ret, s.scheduler.Ready()...)
	return append(ret, s.scheduler.Waiting()...)
}

// UsageHistory returns memory utilization percentages sampled after each step, oldest first
func (s *Service) UsageHistory() []float64 {
	return s.history.values()
}

func (s *Service) emit(ctx context.Context, eventType event.Type, p *process.Process) {
	s.logger.Debug("process "+string(eventType),
		zap.Int("id", p.ID()),
		zap.String("name", p.Name()),
		zap.Int("tick", s.Now()),
		zap.Stringer("state", p.State()))
	if len(s.listeners) == 0 && s.publisher == nil {
		return
	}
	e := event.NewEvent(&event.Context{EventType: eventType, ProcessID: p.ID(), Tick: s.Now()}, p.Summary())
	e.Metadata["usedMB"] = s.allocator.Used()
	for _, listener := range s.listeners {
		listener(e)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("type", string(eventType)),
			zap.Int("id", p.ID()),
			zap.Error(err))
	}
}

func ids(processes []*process.Process) []int {
	ret := make([]int, 0, len(processes))
	for _, p := range processes {
		ret = append(ret, p.ID())
	}
	return ret
}
