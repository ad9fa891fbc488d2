package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/service/messaging"
	"github.com/viant/procsim/service/messaging/memory"
)

func TestNewEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	defer clock.Freeze(at)()

	event := NewEvent(&Context{EventType: TypeAdmitted, ProcessID: 3, Tick: 7}, "P3")
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, at, event.CreatedAt)
	assert.Equal(t, TypeAdmitted, event.Type())
	assert.Equal(t, "P3", event.Data)

	other := NewEvent(&Context{EventType: TypeAdmitted}, "P4")
	assert.NotEqual(t, event.ID, other.ID)
	assert.Equal(t, Type(""), (&Event[string]{}).Type())
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewPublisher[string](memory.NewQueue[Event[string]](memory.Config{QueueBuffer: 1}))

	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{EventType: TypeSubmitted, ProcessID: 1}, "P1")))
	err := publisher.Publish(ctx, NewEvent(&Context{EventType: TypeSubmitted, ProcessID: 2}, "P2"))
	assert.ErrorIs(t, err, messaging.ErrQueueFull)

	var handled *Event[string]
	require.NoError(t, publisher.Handle(ctx, func(e *Event[string]) error {
		handled = e
		return nil
	}))
	require.NotNil(t, handled)
	assert.Equal(t, 1, handled.Context.ProcessID)
}

func TestPublisher_HandleFailure(t *testing.T) {
	ctx := context.Background()
	queue := memory.NewQueue[Event[string]](memory.Config{QueueBuffer: 4, MaxRetries: 1, DeadLetter: true})
	publisher := NewPublisher[string](queue)
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{EventType: TypeCompleted, ProcessID: 1}, "P1")))

	failure := errors.New("sink unavailable")
	fail := func(e *Event[string]) error { return failure }

	err := publisher.Handle(ctx, fail)
	assert.ErrorIs(t, err, failure)
	require.Eventually(t, func() bool { return queue.Size() == 1 }, time.Second, time.Millisecond)

	err = publisher.Handle(ctx, fail)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, queue.DLQSize())
	assert.Equal(t, 0, queue.Size())
}

func TestListener(t *testing.T) {
	ctx := context.Background()
	publisher := NewPublisher[string](memory.NewQueue[Event[string]](memory.DefaultConfig()))

	var mux sync.Mutex
	var received []Type
	wg := sync.WaitGroup{}
	wg.Add(len(Types))
	listener := NewListener(publisher, func(e *Event[string]) error {
		mux.Lock()
		received = append(received, e.Type())
		mux.Unlock()
		wg.Done()
		return nil
	}, nil)
	listener.Start(ctx)
	listener.Start(ctx)

	for i, eventType := range Types {
		require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{EventType: eventType, Tick: i}, "P1")))
	}
	wg.Wait()
	listener.Stop()
	listener.Stop()

	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, Types, received)
}

func TestListener_Redelivery(t *testing.T) {
	ctx := context.Background()
	queue := memory.NewQueue[Event[string]](memory.Config{QueueBuffer: 4, MaxRetries: 2, RetryDelay: time.Millisecond, DeadLetter: true})
	publisher := NewPublisher[string](queue)

	var mux sync.Mutex
	attempts := 0
	var errs []error
	listener := NewListener(publisher, func(e *Event[string]) error {
		mux.Lock()
		defer mux.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}, func(err error) {
		mux.Lock()
		errs = append(errs, err)
		mux.Unlock()
	})
	listener.Start(ctx)
	defer listener.Stop()

	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{EventType: TypeSubmitted, ProcessID: 1}, "P1")))
	require.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return attempts == 2
	}, time.Second, time.Millisecond)

	mux.Lock()
	defer mux.Unlock()
	assert.Len(t, errs, 1)
	assert.Equal(t, 0, queue.DLQSize())
}
