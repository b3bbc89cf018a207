package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TopicItemCreated is the Watermill topic published when an Item is created.
	TopicItemCreated = "item.created"

	// TopicItemDeleted is the Watermill topic published when an Item is deleted.
	// Consumers remove the item from recipes and shopping lists.
	TopicItemDeleted = "item.deleted"
)

// ItemCreatedEvent is published after a new Item is persisted.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicItemCreated).
type ItemCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     uuid.UUID `json:"item_id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemDeletedEvent is published in the same transaction that deletes an Item.
type ItemDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     uuid.UUID `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
