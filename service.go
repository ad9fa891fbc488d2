package procsim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/engine"
	"github.com/viant/procsim/service/report"
	"github.com/viant/procsim/tracing"
	"go.uber.org/zap"
)

const (
	// ServiceName identifies the simulator in traces and logs
	ServiceName = "procsim"

	// Version is reported as service.version in traces
	Version = "0.1.0"
)

// Service wires a Runtime from configuration and options
type Service struct {
	config           *Config
	logger           *zap.Logger
	rnd              *rand.Rand
	listeners        []engine.Listener
	stepListeners    []StepListener
	eventHandlers    []EventHandler
	progressListener func(progress.Progress)
	repository       report.Repository
	tracingErr       error
	runtime          *Runtime
}

// New creates a service; the configuration is validated before anything is built
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if ret.tracingErr != nil {
		return nil, fmt.Errorf("failed to initialise tracing: %w", ret.tracingErr)
	}
	if err := ret.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(ret.eventHandlers) > 0 && !ret.config.Events.Enabled {
		return nil, fmt.Errorf("invalid config: event handlers require events.enabled")
	}
	if ret.config.Tracing.Enabled {
		if err := tracing.Init(ServiceName, Version, ret.config.Tracing.Output); err != nil {
			return nil, fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	if ret.logger == nil {
		logger, err := ret.config.Log.NewLogger()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		ret.logger = logger
	}
	runtime, err := newRuntime(ret)
	if err != nil {
		return nil, err
	}
	ret.runtime = runtime
	return ret, nil
}

// Runtime returns the simulation runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Logger returns the service logger
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// Shutdown stops background work and flushes traces and logs
func (s *Service) Shutdown(ctx context.Context) error {
	s.runtime.Shutdown()
	err := tracing.Shutdown(ctx)
	_ = s.logger.Sync()
	return err
}
