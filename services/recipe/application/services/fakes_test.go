package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/logger"
	recipedomain "github.com/ghuser/pantry/services/recipe/domain"
	"github.com/ghuser/pantry/services/recipe/domain/models"
	"github.com/ghuser/pantry/services/recipe/domain/repositories"
)

func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

type fakeRecipeRepo struct {
	mu       sync.Mutex
	recipes  map[uuid.UUID]*models.Recipe
	updated  []uuid.UUID
	getByIDs int
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: map[uuid.UUID]*models.Recipe{}}
}

func clone(r *models.Recipe) *models.Recipe {
	c := *r
	c.Ingredients = append([]models.Ingredient(nil), r.Ingredients...)
	c.CategoryIDs = append([]uuid.UUID(nil), r.CategoryIDs...)
	return &c
}

func (f *fakeRecipeRepo) Save(_ context.Context, r *models.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipes[r.ID] = clone(r)
	return nil
}

func (f *fakeRecipeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return nil, recipedomain.ErrRecipeNotFound
	}
	return clone(r), nil
}

func (f *fakeRecipeRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getByIDs++
	var out []*models.Recipe
	for _, id := range ids {
		if r, ok := f.recipes[id]; ok {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Recipe, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*models.Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		all = append(all, clone(r))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if opts.Offset < len(all) {
		all = all[opts.Offset:]
	} else {
		all = nil
	}
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, total, nil
}

func (f *fakeRecipeRepo) Update(_ context.Context, r *models.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[r.ID]; !ok {
		return recipedomain.ErrRecipeNotFound
	}
	f.recipes[r.ID] = clone(r)
	f.updated = append(f.updated, r.ID)
	return nil
}

func (f *fakeRecipeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[id]; !ok {
		return recipedomain.ErrRecipeNotFound
	}
	delete(f.recipes, id)
	return nil
}

func (f *fakeRecipeRepo) PruneItem(_ context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed []uuid.UUID
	for id, r := range f.recipes {
		if r.RemoveItem(itemID) {
			changed = append(changed, id)
		}
	}
	return changed, nil
}

type fakeCategoryRepo struct {
	mu   sync.Mutex
	cats map[uuid.UUID]*models.RecipeCategory
}

func newFakeCategoryRepo(cats ...*models.RecipeCategory) *fakeCategoryRepo {
	f := &fakeCategoryRepo{cats: map[uuid.UUID]*models.RecipeCategory{}}
	for _, c := range cats {
		f.cats[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) Save(_ context.Context, c *models.RecipeCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.cats {
		if existing.Name == c.Name {
			return recipedomain.ErrRecipeCategoryAlreadyExists
		}
	}
	f.cats[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RecipeCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cats[id]
	if !ok {
		return nil, recipedomain.ErrRecipeCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.RecipeCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.RecipeCategory
	for _, id := range ids {
		if c, ok := f.cats[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*models.RecipeCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.RecipeCategory, 0, len(f.cats))
	for _, c := range f.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *models.RecipeCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cats[c.ID]; !ok {
		return recipedomain.ErrRecipeCategoryNotFound
	}
	f.cats[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cats[id]; !ok {
		return recipedomain.ErrRecipeCategoryNotFound
	}
	delete(f.cats, id)
	return nil
}

type fakeUsernames map[uuid.UUID]string

func (f fakeUsernames) Usernames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if n, ok := f[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}
