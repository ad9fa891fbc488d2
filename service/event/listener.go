package event

import (
	"context"
	"errors"
	"sync"
)

// Listener drains a publisher on a background goroutine
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T]) error
	onError   func(error)
	cancel    context.CancelFunc
	done      chan struct{}
	mux       sync.Mutex
}

// NewListener creates a listener; onError may be nil. Events whose handler
// returns an error are nacked.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T]) error, onError func(error)) *Listener[T] {
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		onError:   onError,
	}
}

// Start begins consuming; calling Start on a running listener is a no-op
func (l *Listener[T]) Start(ctx context.Context) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
}

// Stop cancels consumption and waits for the goroutine to exit
func (l *Listener[T]) Stop() {
	l.mux.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mux.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Listener[T]) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		err := l.publisher.Handle(ctx, l.handler)
		if err == nil {
			continue
		}
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return
		}
		if l.onError != nil {
			l.onError(err)
		}
	}
}
