package procsim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/engine"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/generator"
	"github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/service/report"
	"github.com/viant/procsim/tracing"
	"go.uber.org/zap"
)

// StepListener observes the simulation after every step. It runs while the
// runtime lock is held and must not call back into the Runtime.
type StepListener func(ctx context.Context, view *View)

// EventHandler consumes lifecycle events delivered through the event queue. A
// returned error redelivers the event until the retry limit, then dead-letters it.
type EventHandler func(e *event.Event[process.Summary]) error

// Runtime serialises access to one simulation engine
type Runtime struct {
	mux           sync.Mutex
	config        *Config
	logger        *zap.Logger
	engine        *engine.Service
	engineOptions []engine.Option
	generator     *generator.Service
	progress      *progress.Tracker
	onProgress    func(progress.Progress)
	stepListeners []StepListener
	repository    report.Repository
	eventQueue    *memory.Queue[event.Event[process.Summary]]
	eventListener *event.Listener[process.Summary]
	eventHandlers []EventHandler
	driver        *driver
}

func newRuntime(s *Service) (*Runtime, error) {
	ret := &Runtime{
		config:        s.config,
		logger:        s.logger,
		stepListeners: s.stepListeners,
		repository:    s.repository,
		onProgress:    s.progressListener,
		eventHandlers: s.eventHandlers,
	}
	var generatorOptions []generator.Option
	if s.rnd != nil {
		generatorOptions = append(generatorOptions, generator.WithRand(s.rnd))
	}
	var err error
	if ret.generator, err = generator.New(s.config.Generator, generatorOptions...); err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	ret.engineOptions = []engine.Option{
		engine.WithLogger(s.logger),
		engine.WithHistorySize(s.config.History.Size),
		engine.WithListener(ret.countEvent),
	}
	for _, listener := range s.listeners {
		ret.engineOptions = append(ret.engineOptions, engine.WithListener(listener))
	}
	if s.config.Events.Enabled {
		ret.eventQueue = memory.NewQueue[event.Event[process.Summary]](s.config.Events.QueueConfig())
		publisher := event.NewPublisher[process.Summary](ret.eventQueue)
		ret.engineOptions = append(ret.engineOptions, engine.WithPublisher(publisher))
		ret.eventListener = event.NewListener(publisher, ret.handleEvent, func(err error) {
			ret.logger.Warn("failed to consume event", zap.Error(err))
		})
		ret.eventListener.Start(context.Background())
	}
	if err = ret.reset(); err != nil {
		return nil, err
	}
	ret.driver = newDriver(s.config.Clock.Interval(), ret.tick, s.logger)
	return ret, nil
}

func (r *Runtime) reset() error {
	srv, err := engine.New(r.config.Memory.CapacityMB, r.engineOptions...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	r.engine = srv
	r.progress = progress.New(r.onProgress)
	return nil
}

func (r *Runtime) countEvent(e *event.Event[process.Summary]) {
	r.progress.Update(progress.DeltaOf(e.Type()))
}

func (r *Runtime) handleEvent(e *event.Event[process.Summary]) error {
	r.logger.Info("process "+string(e.Type()),
		zap.Int("id", e.Data.ID),
		zap.String("name", e.Data.Name),
		zap.Int("tick", e.Context.Tick),
		zap.String("eventId", e.ID))
	var errs []error
	for _, handler := range r.eventHandlers {
		if err := handler(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeadLetters returns the number of events dropped after exhausting their retries
func (r *Runtime) DeadLetters() int {
	if r.eventQueue == nil {
		return 0
	}
	return r.eventQueue.DLQSize()
}

// Submit validates spec and adds a new process; a blank name becomes "Manual <n>"
func (r *Runtime) Submit(ctx context.Context, spec process.Spec) (*process.Summary, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.submit(ctx, spec)
}

// SubmitAll validates every spec before adding any of them
func (r *Runtime) SubmitAll(ctx context.Context, specs ...process.Spec) ([]*process.Summary, error) {
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return nil, fmt.Errorf("process %d: %w", i, err)
		}
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	ret := make([]*process.Summary, 0, len(specs))
	for _, spec := range specs {
		summary, err := r.submit(ctx, spec)
		if err != nil {
			return ret, err
		}
		ret = append(ret, summary)
	}
	return ret, nil
}

// SubmitRandom adds a process drawn from the generator
func (r *Runtime) SubmitRandom(ctx context.Context) (*process.Summary, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.submit(ctx, r.generator.Next())
}

func (r *Runtime) submit(ctx context.Context, spec process.Spec) (*process.Summary, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		name = fmt.Sprintf("Manual %d", len(r.engine.Finished())+1)
	}
	p, err := r.engine.NewProcess(name, spec.MemoryMB, spec.Duration)
	if err != nil {
		return nil, err
	}
	if err = r.engine.Add(ctx, p); err != nil {
		return nil, err
	}
	summary := p.Summary()
	return &summary, nil
}

// Step advances one logical unit; it is refused while the interval driver runs
func (r *Runtime) Step(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.driver.running() {
		return ErrDriverRunning
	}
	return r.step(ctx)
}

// StepN advances n units and returns how many were taken
func (r *Runtime) StepN(ctx context.Context, n int) (int, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.driver.running() {
		return 0, ErrDriverRunning
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := r.step(ctx); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Drain steps until no process is pending or running. It returns ErrStepLimit
// when maxSteps elapse first.
func (r *Runtime) Drain(ctx context.Context, maxSteps int) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "runtime.drain", "INTERNAL")
	r.mux.Lock()
	steps, err := r.drain(ctx, maxSteps)
	r.mux.Unlock()
	span.WithInt("steps", steps)
	tracing.EndSpan(span, err)
	return steps, err
}

func (r *Runtime) drain(ctx context.Context, maxSteps int) (int, error) {
	if r.driver.running() {
		return 0, ErrDriverRunning
	}
	steps := 0
	for r.engine.IsActive() {
		if steps >= maxSteps {
			return steps, fmt.Errorf("%w: %d steps, %d processes pending", ErrStepLimit, steps, len(r.engine.Live()))
		}
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		if err := r.step(ctx); err != nil {
			return steps, err
		}
		steps++
	}
	return steps, nil
}

func (r *Runtime) step(ctx context.Context) error {
	if err := r.engine.Step(ctx); err != nil {
		r.logger.Error("step failed", zap.Int("tick", r.engine.Now()), zap.Error(err))
		return err
	}
	if len(r.stepListeners) == 0 {
		return nil
	}
	view := newView(r.engine, r.driver.state(), r.progress.Snapshot())
	for _, listener := range r.stepListeners {
		listener(ctx, view)
	}
	return nil
}

func (r *Runtime) tick(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.step(ctx)
}

// Cancel cancels a live process; it returns false for unknown, finished or canceled ids
func (r *Runtime) Cancel(ctx context.Context, id int) bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.engine.Cancel(ctx, id)
}

// Active returns true while any process is queued or running
func (r *Runtime) Active() bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.engine.IsActive()
}

// Snapshot returns the engine snapshot
func (r *Runtime) Snapshot() engine.Snapshot {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.engine.Snapshot()
}

// View returns a render-ready picture of the simulation
func (r *Runtime) View() *View {
	r.mux.Lock()
	defer r.mux.Unlock()
	return newView(r.engine, r.driver.state(), r.progress.Snapshot())
}

// History returns memory utilization samples, oldest first
func (r *Runtime) History() []float64 {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.engine.UsageHistory()
}

// Progress returns the cumulative lifecycle counters of the current run
func (r *Runtime) Progress() progress.Progress {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.progress.Snapshot()
}

// Timeline returns the transition ticks of a process
func (r *Runtime) Timeline(id int) (engine.Timeline, bool) {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.engine.Timeline(id)
}

// Reset pauses the driver and replaces the engine with a fresh one of the same capacity; ids restart at 1
func (r *Runtime) Reset(ctx context.Context) error {
	if err := r.driver.pause(ctx); err != nil {
		return err
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	if err := r.reset(); err != nil {
		return err
	}
	r.logger.Info("simulation reset", zap.Int("capacityMB", r.config.Memory.CapacityMB))
	return nil
}

// Start runs a step every clock interval until Pause
func (r *Runtime) Start(ctx context.Context) error {
	return r.driver.start(ctx)
}

// Pause stops the interval driver and waits for an in-flight step
func (r *Runtime) Pause(ctx context.Context) error {
	return r.driver.pause(ctx)
}

// Running returns true while the interval driver runs
func (r *Runtime) Running() bool {
	return r.driver.running()
}

// Play replays scenario from the current tick and returns the run report
func (r *Runtime) Play(ctx context.Context, scenario *Scenario) (*report.Report, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "runtime.play", "INTERNAL")
	span.WithAttributes(map[string]string{"scenario": scenario.Name})
	r.mux.Lock()
	err := r.play(ctx, scenario)
	r.mux.Unlock()
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return r.Report(ctx, report.WithOrigin(scenario.Name))
}

func (r *Runtime) play(ctx context.Context, scenario *Scenario) error {
	if r.driver.running() {
		return ErrDriverRunning
	}
	arrivals, cancels := scenario.timeline()
	ids := make(map[string]int, len(arrivals))
	start := r.engine.Now()
	for steps := 0; ; steps++ {
		elapsed := r.engine.Now() - start
		for len(arrivals) > 0 && arrivals[0].At <= elapsed {
			summary, err := r.submit(ctx, arrivals[0].Spec)
			if err != nil {
				return err
			}
			ids[arrivals[0].Name] = summary.ID
			arrivals = arrivals[1:]
		}
		for len(cancels) > 0 && cancels[0].At <= elapsed {
			if !r.engine.Cancel(ctx, ids[cancels[0].Name]) {
				r.logger.Debug("scenario cancel ignored", zap.String("name", cancels[0].Name), zap.Int("tick", r.engine.Now()))
			}
			cancels = cancels[1:]
		}
		if len(arrivals) == 0 && len(cancels) == 0 && !r.engine.IsActive() {
			return nil
		}
		if steps >= scenario.Steps() {
			return fmt.Errorf("%w: scenario %v after %d steps", ErrStepLimit, scenario.Name, steps)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx); err != nil {
			return err
		}
	}
}

// Report summarises the current run and saves it when a repository is configured
func (r *Runtime) Report(ctx context.Context, options ...report.Option) (*report.Report, error) {
	r.mux.Lock()
	options = append([]report.Option{report.WithEvents(r.progress.Snapshot().Counts())}, options...)
	ret := report.Build(r.engine, options...)
	r.mux.Unlock()
	if r.repository == nil {
		return ret, nil
	}
	if err := r.repository.Save(ctx, ret); err != nil {
		return ret, fmt.Errorf("failed to save report %v: %w", ret.RunID, err)
	}
	return ret, nil
}

// Shutdown pauses the driver and stops the event listener
func (r *Runtime) Shutdown() {
	_ = r.driver.pause(context.Background())
	if r.eventListener != nil {
		r.eventListener.Stop()
	}
}
