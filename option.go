package procsim

import (
	"math/rand"

	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/engine"
	"github.com/viant/procsim/service/report"
	"github.com/viant/procsim/tracing"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service
type Option func(s *Service)

// WithConfig sets the configuration; nil keeps DefaultConfig
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger sets the logger; by default it is built from the log config section
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRand injects the random source used for generated processes
func WithRand(rnd *rand.Rand) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

// WithListener registers a synchronous engine event listener that survives Reset
func WithListener(listener engine.Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, listener)
	}
}

// WithEventHandler registers an asynchronous event consumer; it requires events.enabled
func WithEventHandler(handler EventHandler) Option {
	return func(s *Service) {
		s.eventHandlers = append(s.eventHandlers, handler)
	}
}

// WithStepListener registers a callback invoked with the view after every driven step
func WithStepListener(listener StepListener) Option {
	return func(s *Service) {
		s.stepListeners = append(s.stepListeners, listener)
	}
}

// WithProgressListener receives the run counters after every lifecycle event. Like a
// StepListener it runs under the runtime lock.
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.progressListener = listener
	}
}

// WithRepository persists every report built by Runtime.Report
func WithRepository(repository report.Repository) Option {
	return func(s *Service) {
		s.repository = repository
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter writing to outputFile
// (os.Stdout when empty). The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
