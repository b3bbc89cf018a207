package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/pantry/services/item/domain"
	"github.com/ghuser/pantry/services/item/domain/models"
	"github.com/ghuser/pantry/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/pantry/services/item/domain/services"
)

// ItemCategoryService manages item categories.
type ItemCategoryService struct {
	repo repositories.ItemCategoryRepository
}

// NewItemCategoryService returns an ItemCategoryService.
func NewItemCategoryService(repo repositories.ItemCategoryRepository) *ItemCategoryService {
	return &ItemCategoryService{repo: repo}
}

// CategoryInput carries the writable fields of an ItemCategory.
type CategoryInput struct {
	Name   string
	FaIcon string
}

// Create validates and persists a category.
func (s *ItemCategoryService) Create(ctx context.Context, in CategoryInput) (*models.ItemCategory, error) {
	name, err := models.NewName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemCategory, err)
	}
	c := models.NewItemCategory(name, in.FaIcon)
	if err := domainsvcs.ValidateItemCategory(c); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemCategory, err)
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save item category: %w", err)
	}
	return c, nil
}

// List returns every category sorted by name.
func (s *ItemCategoryService) List(ctx context.Context) ([]*models.ItemCategory, error) {
	cs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list item categories: %w", err)
	}
	return cs, nil
}

// Update changes a category's name and icon.
func (s *ItemCategoryService) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.ItemCategory, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item category: %w", err)
	}
	name, err := models.NewName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemCategory, err)
	}
	c.Name, c.FaIcon = name, in.FaIcon
	if err := domainsvcs.ValidateItemCategory(c); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemCategory, err)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update item category: %w", err)
	}
	return c, nil
}
