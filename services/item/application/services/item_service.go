package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/pkg/logger"
	itemdomain "github.com/ghuser/pantry/services/item/domain"
	"github.com/ghuser/pantry/services/item/domain/models"
	"github.com/ghuser/pantry/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/pantry/services/item/domain/services"
)

// ItemCache is the subset of pkg/cache.ItemCache the service needs.
type ItemCache interface {
	Get(ctx context.Context, itemID uuid.UUID) (*pkgcache.CachedItem, error)
	Set(ctx context.Context, item *pkgcache.CachedItem) error
	Delete(ctx context.Context, itemID uuid.UUID) error
}

// ItemService orchestrates creation, retrieval and removal of Items.
// Event publishing is handled by the repository layer (outbox pattern).
// Reads by ID are served from Redis when available.
type ItemService struct {
	repo       repositories.ItemRepository
	categories repositories.ItemCategoryRepository
	cache      ItemCache
	log        logger.Logger
}

// NewItemService returns an ItemService. itemCache may be nil.
func NewItemService(repo repositories.ItemRepository, categories repositories.ItemCategoryRepository, itemCache ItemCache, log logger.Logger) *ItemService {
	return &ItemService{repo: repo, categories: categories, cache: itemCache, log: log}
}

// ItemInput carries the writable fields of an Item.
type ItemInput struct {
	Name       string
	CategoryID uuid.UUID
}

// Create validates and persists an Item. The repository publishes ItemCreatedEvent.
func (s *ItemService) Create(ctx context.Context, in ItemInput) (*models.Item, error) {
	name, err := models.NewName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}

	item := models.NewItem(name, in.CategoryID)
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}

	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	item.CategoryName = category.Name.String()

	s.log.InfoContext(ctx, "item created", "item_id", item.ID, "category_id", item.CategoryID)
	return item, nil
}

// GetByID retrieves an Item using a read-through cache:
//  1. Check Redis first.
//  2. On a miss (or cache error), query Postgres.
//  3. Warm the cache with the Postgres result.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return fromCache(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	s.storeInCache(ctx, item)
	return item, nil
}

// WarmCache loads an item from Postgres into Redis. Used by the item.created consumer.
func (s *ItemService) WarmCache(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		// deleted before the event was consumed
		return nil
	}
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if err := s.cache.Set(ctx, toCache(item)); err != nil {
		return fmt.Errorf("warm item cache: %w", err)
	}
	return nil
}

// List returns a page of items sorted by name plus the total count.
func (s *ItemService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

// Update renames an item or moves it to another category.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, in ItemInput) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	name, err := models.NewName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}
	item.Name = name
	item.CategoryID = in.CategoryID
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}

	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	item.CategoryName = category.Name.String()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.evict(ctx, id)
	return item, nil
}

// Delete removes an item. The repository publishes ItemDeletedEvent so
// recipes and shopping lists drop it asynchronously.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.evict(ctx, id)
	s.log.InfoContext(ctx, "item deleted", "item_id", id)
	return nil
}

func (s *ItemService) storeInCache(ctx context.Context, item *models.Item) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, toCache(item)); err != nil {
		s.log.WarnContext(ctx, "item cache write failed", "item_id", item.ID, "error", err)
	}
}

func (s *ItemService) evict(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "item cache evict failed", "item_id", id, "error", err)
	}
}

func toCache(item *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
		ID:           item.ID,
		Name:         item.Name.String(),
		CategoryID:   item.CategoryID,
		CategoryName: item.CategoryName,
		CreatedAt:    item.CreatedAt,
	}
}

func fromCache(c *pkgcache.CachedItem) *models.Item {
	return &models.Item{
		ID:           c.ID,
		Name:         models.Name(c.Name),
		CategoryID:   c.CategoryID,
		CategoryName: c.CategoryName,
		CreatedAt:    c.CreatedAt,
	}
}
