package procsim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

const (
	DriverPaused  = "paused"
	DriverRunning = "running"

	driverStart = "start"
	driverPause = "pause"
)

// driver steps the simulation on a fixed interval; its paused/running toggle is a state machine
type driver struct {
	fsm      *fsm.FSM
	interval time.Duration
	tick     func(ctx context.Context) error
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	mux      sync.Mutex
}

func newDriver(interval time.Duration, tick func(ctx context.Context) error, logger *zap.Logger) *driver {
	ret := &driver{interval: interval, tick: tick, logger: logger}
	ret.fsm = fsm.NewFSM(
		DriverPaused,
		fsm.Events{
			{Name: driverStart, Src: []string{DriverPaused}, Dst: DriverRunning},
			{Name: driverPause, Src: []string{DriverRunning}, Dst: DriverPaused},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				ret.logger.Info("interval driver", zap.String("from", e.Src), zap.String("to", e.Dst))
			},
		},
	)
	return ret
}

func (d *driver) state() string {
	return d.fsm.Current()
}

func (d *driver) running() bool {
	return d.fsm.Is(DriverRunning)
}

func (d *driver) start(ctx context.Context) error {
	d.mux.Lock()
	defer d.mux.Unlock()
	if err := d.fsm.Event(ctx, driverStart); err != nil {
		return fmt.Errorf("failed to start interval driver: %w", err)
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.run(runCtx, d.done)
	return nil
}

// pause stops the loop and waits for it to exit; pausing a paused driver is a no-op
func (d *driver) pause(ctx context.Context) error {
	d.mux.Lock()
	if !d.fsm.Can(driverPause) {
		d.mux.Unlock()
		return nil
	}
	if err := d.fsm.Event(ctx, driverPause); err != nil {
		d.mux.Unlock()
		return fmt.Errorf("failed to pause interval driver: %w", err)
	}
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mux.Unlock()
	cancel()
	<-done
	return nil
}

func (d *driver) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.tick(ctx); err != nil {
				d.logger.Error("interval step failed, pausing", zap.Error(err))
				d.halt(ctx)
				return
			}
		}
	}
}

// halt pauses from inside the loop without waiting on itself
func (d *driver) halt(ctx context.Context) {
	d.mux.Lock()
	defer d.mux.Unlock()
	if !d.fsm.Can(driverPause) {
		return
	}
	if err := d.fsm.Event(context.WithoutCancel(ctx), driverPause); err != nil {
		d.logger.Warn("failed to pause interval driver", zap.Error(err))
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.cancel, d.done = nil, nil
}
