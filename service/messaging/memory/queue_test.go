package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/service/messaging"
)

type testPayload struct {
	ProcessID int
	Kind      string
}

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[testPayload](config)

	ctx := context.Background()
	payload := testPayload{ProcessID: 1, Kind: "admitted"}
	require.NoError(t, queue.Publish(ctx, &payload))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, message)
	assert.NotEmpty(t, message.ID())
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload, *message.T())

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
}

func TestQueue_Full(t *testing.T) {
	config := DefaultConfig()
	config.QueueBuffer = 2
	queue := NewQueue[testPayload](config)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		require.NoError(t, queue.Publish(ctx, &testPayload{ProcessID: i}))
	}
	err := queue.Publish(ctx, &testPayload{ProcessID: 3})
	assert.ErrorIs(t, err, messaging.ErrQueueFull)
	assert.Equal(t, 2, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, message.T().ProcessID)
	assert.NoError(t, queue.Publish(ctx, &testPayload{ProcessID: 3}))
}

func TestQueue_Retries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 5 * time.Millisecond
	queue := NewQueue[testPayload](config)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, queue.Publish(ctx, &testPayload{ProcessID: 7}))
	var id string
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		if id == "" {
			id = message.ID()
		}
		assert.Equal(t, id, message.ID())
		require.NoError(t, message.Nack(fmt.Errorf("attempt %d", attempt)))
	}

	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.DLQSize())
}

func TestQueue_Concurrency(t *testing.T) {
	queue := NewQueue[testPayload](Config{QueueBuffer: 200})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	producers, perProducer := 10, 10
	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				assert.NoError(t, queue.Publish(ctx, &testPayload{ProcessID: producer*perProducer + j}))
			}
		}(i)
	}
	wg.Wait()

	seen := map[int]bool{}
	for i := 0; i < producers*perProducer; i++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NoError(t, message.Ack())
		seen[message.T().ProcessID] = true
	}
	assert.Len(t, seen, producers*perProducer)
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_ContextCancellation(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, queue.Publish(ctx, &testPayload{ProcessID: 1}))

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeoutCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, queue.Publish(context.Background(), &testPayload{ProcessID: 2}))
	message, err := queue.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, message.T().ProcessID)
}
