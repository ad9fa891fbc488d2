package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/procsim/service/messaging"
)

// Publisher sends events to a queue
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// NewPublisher creates a publisher over queue
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish enqueues event
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if err := p.queue.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %v event %v: %w", event.Type(), event.ID, err)
	}
	return nil
}

// Handle dequeues the next event and passes it to handler. The message is
// acknowledged when handler succeeds and negatively acknowledged otherwise,
// so the queue can redeliver or dead-letter it.
func (p *Publisher[T]) Handle(ctx context.Context, handler func(*Event[T]) error) error {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return err
	}
	event := msg.T()
	if err = handler(event); err != nil {
		if nackErr := msg.Nack(err); nackErr != nil {
			return errors.Join(err, nackErr)
		}
		return fmt.Errorf("failed to handle %v event %v: %w", event.Type(), event.ID, err)
	}
	return msg.Ack()
}
