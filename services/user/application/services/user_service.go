package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	pkgcache "github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/pkg/logger"
	userdomain "github.com/ghuser/pantry/services/user/domain"
	"github.com/ghuser/pantry/services/user/domain/models"
	"github.com/ghuser/pantry/services/user/domain/repositories"
	domainsvcs "github.com/ghuser/pantry/services/user/domain/services"
)

// errNoChange aborts a user transaction that would not modify anything.
var errNoChange = errors.New("no change")

// ShoppingListCache is the subset of pkg/cache.ShoppingListCache the service
// needs. Set must not replace a list built from a newer user version.
type ShoppingListCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]pkgcache.CachedShoppingLine, bool, error)
	Set(ctx context.Context, userID uuid.UUID, version int64, lines []pkgcache.CachedShoppingLine) (bool, error)
	Delete(ctx context.Context, userIDs ...uuid.UUID) error
}

// UserPatch carries the optional fields of PUT /users/{id}. Nil fields are
// left untouched.
type UserPatch struct {
	FavouriteRecipes *[]uuid.UUID
	RecipeMenu       *[]models.MenuEntry
	RegularItems     *[]models.RegularItem
	ExtraItems       *[]models.ExtraItem
	// ExpectedVersion rejects the write with ErrVersionConflict when the
	// stored user has moved on.
	ExpectedVersion *int64
}

// UpdateResult is the user after a write with its merged shopping list.
type UpdateResult struct {
	User           *models.User
	ShoppingList   []models.ShoppingListLine
	MissingRecipes []uuid.UUID
}

// UserService owns the menu, extra and regular items and the shopping list
// derived from them.
type UserService struct {
	users   repositories.UserRepository
	recipes repositories.RecipeLookup
	cache   ShoppingListCache
	log     logger.Logger

	recomputations metric.Int64Counter
	missingRecipes metric.Int64Counter
}

// NewUserService returns a UserService. listCache may be nil.
func NewUserService(users repositories.UserRepository, recipes repositories.RecipeLookup, listCache ShoppingListCache, log logger.Logger) *UserService {
	meter := otel.Meter("github.com/ghuser/pantry/services/user")
	recomputations, err := meter.Int64Counter("shopping_list.recomputations",
		metric.WithDescription("Shopping list snapshots rebuilt from the recipe menu"))
	if err != nil {
		log.Warn("failed to create recomputations counter", "error", err)
	}
	missing, err := meter.Int64Counter("shopping_list.missing_recipes",
		metric.WithDescription("Menu entries skipped because the recipe no longer exists"))
	if err != nil {
		log.Warn("failed to create missing recipes counter", "error", err)
	}

	return &UserService{
		users:          users,
		recipes:        recipes,
		cache:          listCache,
		log:            log,
		recomputations: recomputations,
		missingRecipes: missing,
	}
}

// UpdateUser applies patch under the user's row lock. A new menu or new
// regular items trigger a full recompute of the derived snapshot; new extras
// only change what is merged on read.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*UpdateResult, error) {
	if patch.RecipeMenu != nil {
		if err := domainsvcs.ValidateMenu(*patch.RecipeMenu); err != nil {
			return nil, err
		}
	}
	var regulars []models.RegularItem
	if patch.RegularItems != nil {
		var err error
		if regulars, err = domainsvcs.NormalizeRegulars(*patch.RegularItems); err != nil {
			return nil, err
		}
	}
	var extras []models.ExtraItem
	if patch.ExtraItems != nil {
		var err error
		if extras, err = domainsvcs.NormalizeExtras(*patch.ExtraItems); err != nil {
			return nil, err
		}
	}

	var report domainsvcs.BuildReport
	recompute := patch.RecipeMenu != nil || patch.RegularItems != nil

	u, err := s.users.Update(ctx, id, func(ctx context.Context, u *models.User) error {
		if patch.ExpectedVersion != nil && *patch.ExpectedVersion != u.Version {
			return fmt.Errorf("%w: have version %d, stored %d", userdomain.ErrVersionConflict, *patch.ExpectedVersion, u.Version)
		}
		if patch.FavouriteRecipes != nil {
			u.FavouriteRecipes = dedupeIDs(*patch.FavouriteRecipes)
		}
		if patch.RecipeMenu != nil {
			u.RecipeMenu = append([]models.MenuEntry{}, *patch.RecipeMenu...)
		}
		if patch.RegularItems != nil {
			u.RegularItems = regulars
		}
		if patch.ExtraItems != nil {
			u.ExtraItems = extras
		}
		if !recompute {
			return nil
		}
		var err error
		report, err = s.recompute(ctx, u)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	lines := s.publish(ctx, u)
	if recompute {
		s.observe(ctx, u.ID, report)
	}
	return &UpdateResult{
		User:           u,
		ShoppingList:   lines,
		MissingRecipes: report.Missing(),
	}, nil
}

// GetShoppingList returns the merged list, served from Redis when cached. A
// miss fills the cache tagged with the version just read, so a write that
// commits in between keeps its newer entry.
func (s *UserService) GetShoppingList(ctx context.Context, id uuid.UUID) ([]models.ShoppingListLine, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.WarnContext(ctx, "shopping list cache read failed", "user_id", id, "error", err)
		}
		if ok {
			return fromCache(cached), nil
		}
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	lines := domainsvcs.MergeExtras(u.ShoppingList, u.ExtraItems)

	if s.cache != nil {
		if _, err := s.cache.Set(ctx, id, u.Version, toCache(lines)); err != nil {
			s.log.WarnContext(ctx, "shopping list cache write failed", "user_id", id, "error", err)
		}
	}
	return lines, nil
}

// ToggleLine flips obtained on the (item_id, unit) line of the user's list.
func (s *UserService) ToggleLine(ctx context.Context, id, itemID uuid.UUID, unit string) ([]models.ShoppingListLine, error) {
	u, err := s.users.Update(ctx, id, func(_ context.Context, u *models.User) error {
		derived, extras, err := domainsvcs.ToggleUserLine(u.ShoppingList, u.ExtraItems, itemID, unit)
		if err != nil {
			return err
		}
		u.ShoppingList, u.ExtraItems = derived, extras
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle shopping list line: %w", err)
	}
	return s.publish(ctx, u), nil
}

// GetMenu returns the user's recipe menu.
func (s *UserService) GetMenu(ctx context.Context, id uuid.UUID) ([]models.MenuEntry, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u.RecipeMenu, nil
}

// RecomputeUser rebuilds one user's derived snapshot from current recipes.
func (s *UserService) RecomputeUser(ctx context.Context, id uuid.UUID) error {
	var report domainsvcs.BuildReport
	u, err := s.users.Update(ctx, id, func(ctx context.Context, u *models.User) error {
		var err error
		report, err = s.recompute(ctx, u)
		return err
	})
	if err != nil {
		return fmt.Errorf("recompute user %s: %w", id, err)
	}
	s.publish(ctx, u)
	s.observe(ctx, id, report)
	return nil
}

// AffectedUsers lists users whose menu contains recipeID.
func (s *UserService) AffectedUsers(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.users.FindIDsByMenuRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("find users by recipe: %w", err)
	}
	return ids, nil
}

// RecomputeForRecipe recomputes every list whose menu contains recipeID.
// Users deleted meanwhile are skipped; other failures are collected and the
// remaining users still processed.
func (s *UserService) RecomputeForRecipe(ctx context.Context, recipeID uuid.UUID) (int, error) {
	ids, err := s.AffectedUsers(ctx, recipeID)
	if err != nil {
		return 0, err
	}
	var (
		done int
		errs []error
	)
	for _, id := range ids {
		err := s.RecomputeUser(ctx, id)
		switch {
		case err == nil:
			done++
		case errors.Is(err, userdomain.ErrUserNotFound):
		default:
			errs = append(errs, err)
		}
	}
	return done, errors.Join(errs...)
}

// RemoveRecipe drops a deleted recipe from every user's favourites and menu
// and recomputes the lists whose menu contained it.
func (s *UserService) RemoveRecipe(ctx context.Context, recipeID uuid.UUID) (int, error) {
	ids, err := s.users.FindIDsByRecipe(ctx, recipeID)
	if err != nil {
		return 0, fmt.Errorf("find users by recipe: %w", err)
	}
	return s.forEach(ctx, ids, func(ctx context.Context, u *models.User) (bool, error) {
		inMenu := false
		for _, e := range u.RecipeMenu {
			if e.RecipeID == recipeID {
				inMenu = true
				break
			}
		}
		if !domainsvcs.RemoveRecipe(u, recipeID) {
			return false, nil
		}
		if inMenu {
			report, err := s.recompute(ctx, u)
			if err != nil {
				return false, err
			}
			s.observe(ctx, u.ID, report)
		}
		return true, nil
	})
}

// RemoveItem drops a deleted item from every user's list, extras and regulars.
func (s *UserService) RemoveItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	ids, err := s.users.FindIDsByItem(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("find users by item: %w", err)
	}
	return s.forEach(ctx, ids, func(_ context.Context, u *models.User) (bool, error) {
		return domainsvcs.RemoveItem(u, itemID), nil
	})
}

// forEach applies fn to each user under its row lock. fn reports whether it
// changed the user; unchanged users are not written.
func (s *UserService) forEach(ctx context.Context, ids []uuid.UUID, fn func(ctx context.Context, u *models.User) (bool, error)) (int, error) {
	var (
		changed int
		errs    []error
	)
	for _, id := range ids {
		u, err := s.users.Update(ctx, id, func(ctx context.Context, u *models.User) error {
			ok, err := fn(ctx, u)
			if err != nil {
				return err
			}
			if !ok {
				return errNoChange
			}
			return nil
		})
		switch {
		case err == nil:
			changed++
			s.publish(ctx, u)
		case errors.Is(err, errNoChange), errors.Is(err, userdomain.ErrUserNotFound):
		default:
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
		}
	}
	return changed, errors.Join(errs...)
}

// recompute resolves the menu in one batch and rebuilds u.ShoppingList.
func (s *UserService) recompute(ctx context.Context, u *models.User) (domainsvcs.BuildReport, error) {
	resolved, err := s.recipes.Resolve(ctx, u.MenuRecipeIDs())
	if err != nil {
		return domainsvcs.BuildReport{}, fmt.Errorf("resolve menu recipes: %w", err)
	}
	lines, report, err := domainsvcs.Recompute(u.RecipeMenu, resolved, u.RegularItems, u.ShoppingList)
	if err != nil {
		return domainsvcs.BuildReport{}, err
	}
	u.ShoppingList = lines
	return report, nil
}

func (s *UserService) observe(ctx context.Context, userID uuid.UUID, report domainsvcs.BuildReport) {
	if s.recomputations != nil {
		s.recomputations.Add(ctx, 1)
	}
	missing := report.Missing()
	if len(missing) == 0 {
		return
	}
	if s.missingRecipes != nil {
		s.missingRecipes.Add(ctx, int64(len(missing)))
	}
	s.log.WarnContext(ctx, "menu references missing recipes", "user_id", userID, "recipe_ids", missing)
}

// publish merges u's list and stores it in the cache under the version just
// committed. If the cache write fails the entry is dropped instead.
func (s *UserService) publish(ctx context.Context, u *models.User) []models.ShoppingListLine {
	lines := domainsvcs.MergeExtras(u.ShoppingList, u.ExtraItems)
	if s.cache == nil {
		return lines
	}
	if _, err := s.cache.Set(ctx, u.ID, u.Version, toCache(lines)); err != nil {
		s.log.WarnContext(ctx, "shopping list cache write failed", "user_id", u.ID, "error", err)
		if err := s.cache.Delete(ctx, u.ID); err != nil {
			s.log.WarnContext(ctx, "shopping list cache invalidation failed", "user_id", u.ID, "error", err)
		}
	}
	return lines
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toCache(lines []models.ShoppingListLine) []pkgcache.CachedShoppingLine {
	out := make([]pkgcache.CachedShoppingLine, len(lines))
	for i, l := range lines {
		out[i] = pkgcache.CachedShoppingLine(l)
	}
	return out
}

func fromCache(lines []pkgcache.CachedShoppingLine) []models.ShoppingListLine {
	out := make([]models.ShoppingListLine, len(lines))
	for i, l := range lines {
		out[i] = models.ShoppingListLine(l)
	}
	return out
}
