package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/logger"
	itemdomain "github.com/ghuser/pantry/services/item/domain"
	"github.com/ghuser/pantry/services/item/domain/models"
	"github.com/ghuser/pantry/services/item/domain/repositories"
)

func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Item
	reads int
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[uuid.UUID]models.Item{}}
}

func (f *fakeItemRepo) Save(_ context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Name == item.Name {
			return itemdomain.ErrItemAlreadyExists
		}
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	item, ok := f.items[id]
	if !ok {
		return nil, itemdomain.ErrItemNotFound
	}
	return &item, nil
}

func (f *fakeItemRepo) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*models.Item, 0, len(f.items))
	for _, item := range f.items {
		all = append(all, &item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if opts.Offset >= total {
		return []*models.Item{}, total, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, total, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return itemdomain.ErrItemNotFound
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return itemdomain.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]models.ItemCategory
}

func newFakeCategoryRepo(cs ...*models.ItemCategory) *fakeCategoryRepo {
	f := &fakeCategoryRepo{categories: map[uuid.UUID]models.ItemCategory{}}
	for _, c := range cs {
		f.categories[c.ID] = *c
	}
	return f
}

func (f *fakeCategoryRepo) Save(_ context.Context, c *models.ItemCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.Name == c.Name || existing.FaIcon == c.FaIcon {
			return itemdomain.ErrItemCategoryAlreadyExists
		}
	}
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ItemCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, itemdomain.ErrItemCategoryNotFound
	}
	return &c, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*models.ItemCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ItemCategory, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *models.ItemCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[c.ID]; !ok {
		return itemdomain.ErrItemCategoryNotFound
	}
	f.categories[c.ID] = *c
	return nil
}

// fakeItemCache mimics pkg/cache.ItemCache: a miss is redis.Nil.
type fakeItemCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]pkgcache.CachedItem
}

func newFakeItemCache() *fakeItemCache {
	return &fakeItemCache{entries: map[uuid.UUID]pkgcache.CachedItem{}}
}

func (c *fakeItemCache) Get(_ context.Context, id uuid.UUID) (*pkgcache.CachedItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.entries[id]
	if !ok {
		return nil, redis.Nil
	}
	return &item, nil
}

func (c *fakeItemCache) Set(_ context.Context, item *pkgcache.CachedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[item.ID] = *item
	return nil
}

func (c *fakeItemCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
