package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/auth"
	pkgcache "github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/logger"
	userdomain "github.com/ghuser/pantry/services/user/domain"
	"github.com/ghuser/pantry/services/user/domain/models"
)

func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func newTestIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:        "pantry-test",
		AccessSecret:  []byte("test-access-secret-must-be-32-bytes"),
		RefreshSecret: []byte("test-refresh-secret-must-be-32-byte"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    720 * time.Hour,
	})
}

// fakeUserRepo serializes Update with a mutex the way the row lock does.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*models.User
	writes int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = cloneUser(u)
	}
	return f
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.FavouriteRecipes = append([]uuid.UUID{}, u.FavouriteRecipes...)
	c.RecipeMenu = append([]models.MenuEntry{}, u.RecipeMenu...)
	c.RegularItems = append([]models.RegularItem{}, u.RegularItems...)
	c.ExtraItems = append([]models.ExtraItem{}, u.ExtraItems...)
	c.ShoppingList = append([]models.ShoppingListLine{}, u.ShoppingList...)
	return &c
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return userdomain.ErrUsernameTaken
		}
	}
	f.users[u.ID] = cloneUser(u)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username.String() == username {
			return cloneUser(u), nil
		}
	}
	return nil, userdomain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, u *models.User) error) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	u := cloneUser(stored)
	if err := fn(ctx, u); err != nil {
		return nil, err
	}
	u.Version = stored.Version + 1
	f.users[id] = cloneUser(u)
	f.writes++
	return u, nil
}

func (f *fakeUserRepo) FindIDsByMenuRecipe(_ context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	return f.find(func(u *models.User) bool {
		for _, e := range u.RecipeMenu {
			if e.RecipeID == recipeID {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeUserRepo) FindIDsByRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	return f.find(func(u *models.User) bool {
		for _, id := range u.FavouriteRecipes {
			if id == recipeID {
				return true
			}
		}
		for _, e := range u.RecipeMenu {
			if e.RecipeID == recipeID {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeUserRepo) FindIDsByItem(_ context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	return f.find(func(u *models.User) bool {
		for _, l := range u.ShoppingList {
			if l.ItemID == itemID {
				return true
			}
		}
		for _, x := range u.ExtraItems {
			if x.ItemID == itemID {
				return true
			}
		}
		for _, r := range u.RegularItems {
			if r.ItemID == itemID {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeUserRepo) Usernames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u.Username.String()
		}
	}
	return out, nil
}

func (f *fakeUserRepo) find(match func(u *models.User) bool) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for id, u := range f.users {
		if match(u) {
			out = append(out, id)
		}
	}
	return out
}

// fakeRecipes is an in-memory RecipeLookup.
type fakeRecipes struct {
	mu      sync.Mutex
	recipes map[uuid.UUID][]models.Ingredient
	calls   int
}

func (f *fakeRecipes) Resolve(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := map[uuid.UUID][]models.Ingredient{}
	for _, id := range ids {
		if ings, ok := f.recipes[id]; ok {
			out[id] = ings
		}
	}
	return out, nil
}

func (f *fakeRecipes) set(id uuid.UUID, ings ...models.Ingredient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipes[id] = ings
}

func (f *fakeRecipes) remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recipes, id)
}

type cachedList struct {
	version int64
	lines   []pkgcache.CachedShoppingLine
}

// fakeListCache is an in-memory ShoppingListCache with the same
// newer-version-wins Set as the Redis script. beforeSet, when set, runs once
// ahead of the next Set with no lock held.
type fakeListCache struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]cachedList
	deletes   int
	beforeSet func()
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{entries: map[uuid.UUID]cachedList{}}
}

func (c *fakeListCache) Get(_ context.Context, id uuid.UUID) ([]pkgcache.CachedShoppingLine, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e.lines, ok, nil
}

func (c *fakeListCache) Set(_ context.Context, id uuid.UUID, version int64, lines []pkgcache.CachedShoppingLine) (bool, error) {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[id]; ok && cur.version >= version {
		return false, nil
	}
	c.entries[id] = cachedList{version: version, lines: lines}
	return true, nil
}

func (c *fakeListCache) Delete(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
	}
	c.deletes++
	return nil
}

func (c *fakeListCache) entry(id uuid.UUID) (cachedList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}
