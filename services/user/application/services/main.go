package services

import (
	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/services/user/domain/repositories"
	"github.com/ghuser/pantry/services/user/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the user context.
type Services struct {
	Auth  *AuthService
	Users *UserService
}

// New wires the user services. recipes resolves menu recipes and is provided
// by the recipe context through infrastructure/recipes.Lookup.
func New(a *app.Application, repo *postgres.UserRepository, recipes repositories.RecipeLookup) *Services {
	var listCache ShoppingListCache
	if a.Redis != nil {
		ttl := a.Config.ShoppingListCacheTTL
		listCache = cache.NewShoppingListCache(a.Redis, ttl)
	}

	return &Services{
		Auth:  NewAuthService(repo, a.Tokens, a.Passwords, a.Logger),
		Users: NewUserService(repo, recipes, listCache, a.Logger),
	}
}
