package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Metadata keys set on every domain event message.
const (
	MetaEventID      = "event_id"
	MetaEventVersion = "event_version"
)

// NewMessage JSON-encodes payload into a Watermill message carrying the event
// id, schema version and the OTel trace context of ctx.
func NewMessage(ctx context.Context, eventID uuid.UUID, version int, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(MetaEventID, eventID.String())
	msg.Metadata.Set(MetaEventVersion, strconv.Itoa(version))

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

// PublishInTx publishes payload on topic inside tx so the event is committed
// or rolled back together with the business write.
func (q *EventBus) PublishInTx(ctx context.Context, tx *sql.Tx, topic string, eventID uuid.UUID, version int, payload any) error {
	msg, err := NewMessage(ctx, eventID, version, payload)
	if err != nil {
		return err
	}
	p, err := q.NewTxPublisher(tx)
	if err != nil {
		return err
	}
	if err := p.Publish(topic, msg); err != nil {
		return fmt.Errorf("events: publish %s in tx: %w", topic, err)
	}
	return nil
}

// Decode unmarshals a message payload into T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode %s: %w", msg.UUID, err)
	}
	return v, nil
}
