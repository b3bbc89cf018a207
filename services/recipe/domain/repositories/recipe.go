package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/recipe/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // 0 returns all
	Offset int
}

// RecipeRepository is the persistence interface for the Recipe aggregate.
type RecipeRepository interface {
	Save(ctx context.Context, r *models.Recipe) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)

	// GetByIDs loads every listed recipe in one query. Unknown ids are absent
	// from the result; order is unspecified.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Recipe, error)

	// List returns recipes ordered by name plus the total count.
	List(ctx context.Context, opts QueryOpts) ([]*models.Recipe, int, error)

	// Update replaces a recipe and publishes RecipeUpdatedEvent in the same transaction.
	Update(ctx context.Context, r *models.Recipe) error

	// Delete removes a recipe and publishes RecipeDeletedEvent in the same transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// PruneItem removes itemID from every recipe's ingredients and publishes
	// RecipeUpdatedEvent for each recipe it changed. Returns the changed ids.
	PruneItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)
}

// RecipeCategoryRepository is the persistence interface for RecipeCategory.
type RecipeCategoryRepository interface {
	Save(ctx context.Context, c *models.RecipeCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RecipeCategory, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.RecipeCategory, error)
	List(ctx context.Context) ([]*models.RecipeCategory, error)
	Update(ctx context.Context, c *models.RecipeCategory) error

	// Delete removes the category and strips it from every recipe's
	// category_ids in the same transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}
