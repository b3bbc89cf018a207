package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/user/domain/models"
)

// UserRepository is the persistence interface for the User aggregate.
type UserRepository interface {
	// Create inserts a new user. Returns ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Update serializes writes to one user: the row is locked for the
	// duration of fn, and the result is stored with Version incremented.
	// An error from fn aborts the transaction without writing.
	Update(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, u *models.User) error) (*models.User, error)

	// FindIDsByMenuRecipe lists users whose menu contains recipeID.
	FindIDsByMenuRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error)

	// FindIDsByRecipe lists users whose menu or favourites contain recipeID.
	FindIDsByRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error)

	// FindIDsByItem lists users whose list, extras or regulars reference itemID.
	FindIDsByItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)

	// Usernames resolves ids to usernames; unknown ids are absent.
	Usernames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// RecipeLookup resolves menu recipes to their single-serving ingredients in
// one batch. Ids that do not resolve are absent from the result.
type RecipeLookup interface {
	Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.Ingredient, error)
}
