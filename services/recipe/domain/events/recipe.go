package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TopicRecipeUpdated is published when a recipe's content changes.
	// Consumers recompute the shopping lists of users whose menu contains it.
	TopicRecipeUpdated = "recipe.updated"

	// TopicRecipeDeleted is published when a recipe is removed. Consumers drop
	// it from favourites and menus, then recompute the affected lists.
	TopicRecipeDeleted = "recipe.deleted"
)

// RecipeUpdatedEvent is published in the same transaction that updates a Recipe.
type RecipeUpdatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	RecipeID   uuid.UUID `json:"recipe_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RecipeDeletedEvent is published in the same transaction that deletes a Recipe.
type RecipeDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	RecipeID   uuid.UUID `json:"recipe_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
