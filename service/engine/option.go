package engine

import (
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/event"
	"go.uber.org/zap"
)

// DefaultHistorySize is the number of utilization samples kept by default
const DefaultHistorySize = 80

// Listener receives lifecycle events synchronously from the engine
type Listener func(e *event.Event[process.Summary])

// Option customises the engine
type Option func(s *Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithListener registers a synchronous event listener
func WithListener(listener Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, listener)
	}
}

// WithPublisher publishes every lifecycle event to a queue
func WithPublisher(publisher *event.Publisher[process.Summary]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithHistorySize bounds the utilization history
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.history = newHistory(size)
		}
	}
}

// WithSequence injects the id allocator used by NewProcess
func WithSequence(sequence *idgen.Sequence) Option {
	return func(s *Service) {
		if sequence != nil {
			s.ids = sequence
		}
	}
}
