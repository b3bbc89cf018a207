package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/item/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return; 0 returns all
	Offset int // Number of records to skip
}

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
type ItemRepository interface {
	// Save inserts a new Item and publishes ItemCreatedEvent in the same transaction.
	Save(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// List returns items ordered by name plus the total count (ignoring pagination).
	List(ctx context.Context, opts QueryOpts) ([]*models.Item, int, error)

	// Update persists name and category changes. Returns ErrItemNotFound if absent.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes an item and publishes ItemDeletedEvent in the same transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemCategoryRepository is the persistence interface for ItemCategory.
type ItemCategoryRepository interface {
	Save(ctx context.Context, c *models.ItemCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ItemCategory, error)
	List(ctx context.Context) ([]*models.ItemCategory, error)
	Update(ctx context.Context, c *models.ItemCategory) error
}
