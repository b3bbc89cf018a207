package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	recipedomain "github.com/ghuser/pantry/services/recipe/domain"
	"github.com/ghuser/pantry/services/recipe/domain/models"
	"github.com/ghuser/pantry/services/recipe/domain/repositories"
	domainsvcs "github.com/ghuser/pantry/services/recipe/domain/services"
)

// RecipeCategoryService manages recipe categories.
type RecipeCategoryService struct {
	repo repositories.RecipeCategoryRepository
}

func NewRecipeCategoryService(repo repositories.RecipeCategoryRepository) *RecipeCategoryService {
	return &RecipeCategoryService{repo: repo}
}

func (s *RecipeCategoryService) Create(ctx context.Context, name string) (*models.RecipeCategory, error) {
	if err := domainsvcs.ValidateCategoryName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", recipedomain.ErrInvalidRecipeCategory, err)
	}
	c := models.NewRecipeCategory(name)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save recipe category: %w", err)
	}
	return c, nil
}

func (s *RecipeCategoryService) List(ctx context.Context) ([]*models.RecipeCategory, error) {
	cs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipe categories: %w", err)
	}
	return cs, nil
}

func (s *RecipeCategoryService) Update(ctx context.Context, id uuid.UUID, name string) (*models.RecipeCategory, error) {
	if err := domainsvcs.ValidateCategoryName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", recipedomain.ErrInvalidRecipeCategory, err)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe category: %w", err)
	}
	c.Name = name
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update recipe category: %w", err)
	}
	return c, nil
}

// Delete removes a category; recipes referencing it lose the reference in
// the same transaction.
func (s *RecipeCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe category: %w", err)
	}
	return nil
}
