package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/logger"
	recipedomain "github.com/ghuser/pantry/services/recipe/domain"
	"github.com/ghuser/pantry/services/recipe/domain/models"
	"github.com/ghuser/pantry/services/recipe/domain/repositories"
	domainsvcs "github.com/ghuser/pantry/services/recipe/domain/services"
)

// UsernameLookup resolves user ids to usernames. Unknown ids are absent.
type UsernameLookup interface {
	Usernames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// RecipeInput carries the writable fields of a Recipe.
type RecipeInput struct {
	Name          string
	TimeInMinutes int
	Image         models.Image
	Ingredients   []models.Ingredient
	Instructions  []string
	Notes         []string
	CategoryIDs   []uuid.UUID
}

// RecipeDetail is a recipe with its categories expanded and the creator's username.
type RecipeDetail struct {
	Recipe     *models.Recipe
	Categories []*models.RecipeCategory
	CreatedBy  string
}

// RecipeService orchestrates recipe CRUD and serves ingredient lookups to
// the shopping-list aggregator.
type RecipeService struct {
	repo       repositories.RecipeRepository
	categories repositories.RecipeCategoryRepository
	users      UsernameLookup
	log        logger.Logger
}

// NewRecipeService returns a RecipeService. users may be nil, in which case
// creator usernames are left empty.
func NewRecipeService(repo repositories.RecipeRepository, categories repositories.RecipeCategoryRepository, users UsernameLookup, log logger.Logger) *RecipeService {
	return &RecipeService{repo: repo, categories: categories, users: users, log: log}
}

// Create validates and stores a recipe authored by the caller.
func (s *RecipeService) Create(ctx context.Context, author auth.Principal, in RecipeInput) (*models.Recipe, error) {
	rec := models.NewRecipe(in.Name, author.UserID, author.IsAdmin)
	apply(rec, in)

	if err := s.validate(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save recipe: %w", err)
	}
	s.log.InfoContext(ctx, "recipe created", "recipe_id", rec.ID, "approved", rec.Approved)
	return rec, nil
}

// Get returns a recipe with its categories and creator username.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*RecipeDetail, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	cats, err := s.categories.GetByIDs(ctx, rec.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("get recipe categories: %w", err)
	}

	detail := &RecipeDetail{Recipe: rec, Categories: cats}
	if s.users != nil {
		names, err := s.users.Usernames(ctx, []uuid.UUID{rec.CreatedBy})
		if err != nil {
			return nil, fmt.Errorf("get recipe author: %w", err)
		}
		detail.CreatedBy = names[rec.CreatedBy]
	}
	return detail, nil
}

// List returns a page of recipes sorted by name plus the total count.
func (s *RecipeService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Recipe, int, error) {
	recs, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recs, total, nil
}

// Update replaces a recipe's content. The repository publishes
// RecipeUpdatedEvent so menus containing it are recomputed.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	rec.Name = in.Name
	apply(rec, in)
	rec.UpdatedAt = time.Now().UTC()

	if err := s.validate(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	s.log.InfoContext(ctx, "recipe updated", "recipe_id", rec.ID)
	return rec, nil
}

// Delete removes a recipe. Menus keep the tombstone until the
// recipe.deleted consumer prunes them.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	s.log.InfoContext(ctx, "recipe deleted", "recipe_id", id)
	return nil
}

// ResolveIngredients is the batched recipe lookup used by shopping-list
// recomputation: one query for all ids. Ids that do not resolve are absent.
func (s *RecipeService) ResolveIngredients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.Ingredient, error) {
	recs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve recipes: %w", err)
	}
	out := make(map[uuid.UUID][]models.Ingredient, len(recs))
	for _, rec := range recs {
		out[rec.ID] = rec.Ingredients
	}
	return out, nil
}

// PruneItem removes a deleted item from every recipe's ingredients.
func (s *RecipeService) PruneItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	changed, err := s.repo.PruneItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("prune item from recipes: %w", err)
	}
	if len(changed) > 0 {
		s.log.InfoContext(ctx, "item pruned from recipes", "item_id", itemID, "recipes", len(changed))
	}
	return changed, nil
}

func (s *RecipeService) validate(ctx context.Context, rec *models.Recipe) error {
	if err := domainsvcs.ValidateRecipe(rec); err != nil {
		return fmt.Errorf("%w: %w", recipedomain.ErrInvalidRecipe, err)
	}
	if len(rec.CategoryIDs) == 0 {
		return nil
	}
	found, err := s.categories.GetByIDs(ctx, rec.CategoryIDs)
	if err != nil {
		return fmt.Errorf("get recipe categories: %w", err)
	}
	if len(found) != len(rec.CategoryIDs) {
		return recipedomain.ErrRecipeCategoryNotFound
	}
	return nil
}

func apply(rec *models.Recipe, in RecipeInput) {
	rec.TimeInMinutes = in.TimeInMinutes
	rec.Image = in.Image
	rec.Ingredients = nonNil(in.Ingredients)
	rec.Instructions = nonNil(in.Instructions)
	rec.Notes = nonNil(in.Notes)
	rec.CategoryIDs = dedupe(in.CategoryIDs)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
