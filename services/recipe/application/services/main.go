package services

import (
	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/services/recipe/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the recipe context.
type Services struct {
	Recipe         *RecipeService
	RecipeCategory *RecipeCategoryService
}

// New wires the recipe services. users resolves creator usernames and is
// provided by the user context.
func New(a *app.Application, users UsernameLookup) *Services {
	categories := postgres.NewRecipeCategoryRepository(a.Db)
	recipes := postgres.NewRecipeRepository(a.Db, a.EventBus)

	return &Services{
		Recipe:         NewRecipeService(recipes, categories, users, a.Logger),
		RecipeCategory: NewRecipeCategoryService(categories),
	}
}
