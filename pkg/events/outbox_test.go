package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

type samplePayload struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
}

func TestNewMessage_MetadataAndDecode(t *testing.T) {
	eventID := uuid.New()
	in := samplePayload{ItemID: uuid.New(), Name: "Flour"}

	msg, err := NewMessage(context.Background(), eventID, 2, in)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if got := msg.Metadata.Get(MetaEventID); got != eventID.String() {
		t.Errorf("event_id: got %q, want %q", got, eventID)
	}
	if got := msg.Metadata.Get(MetaEventVersion); got != "2" {
		t.Errorf("event_version: got %q, want %q", got, "2")
	}

	out, err := Decode[samplePayload](msg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestNewMessage_InjectsTraceContext(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg, err := NewMessage(ctx, uuid.New(), 1, samplePayload{})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.Metadata.Get("traceparent") == "" {
		t.Fatal("expected traceparent metadata")
	}
}

func TestDecode_InvalidPayload(t *testing.T) {
	msg, _ := NewMessage(context.Background(), uuid.New(), 1, "not an object")
	if _, err := Decode[samplePayload](msg); err == nil {
		t.Fatal("expected decode error")
	}
}
