package events

import (
	"context"
	"fmt"
	"slices"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Handler processes one message. Returning an error triggers a retry.
type Handler func(context.Context, *message.Message) error

// Typed wraps fn so it receives the decoded payload. A payload that cannot be
// decoded is logged and acked, since retrying it can never succeed.
func Typed[T any](q *EventBus, fn func(context.Context, T) error) Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := Decode[T](msg)
		if err != nil {
			q.log.ErrorContext(ctx, "events: dropping undecodable message",
				"message_uuid", msg.UUID, "error", err)
			return nil
		}
		return fn(ctx, evt)
	}
}

// SubscribeAll subscribes every handler to its topic and drains each error
// channel into the log until the bus is closed.
func (q *EventBus) SubscribeAll(ctx context.Context, handlers map[string]Handler) error {
	topics := make([]string, 0, len(handlers))
	for topic := range handlers {
		topics = append(topics, topic)
	}
	slices.Sort(topics)

	for _, topic := range topics {
		errCh, err := q.Subscribe(ctx, topic, handlers[topic])
		if err != nil {
			return fmt.Errorf("events: subscribe all: %w", err)
		}
		go func() {
			for err := range errCh {
				q.log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
	}

	q.log.Info("event subscribers registered", "topics", topics)
	return nil
}
