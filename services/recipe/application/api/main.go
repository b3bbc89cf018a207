package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/services/recipe/application/handlers"
	appsvcs "github.com/ghuser/pantry/services/recipe/application/services"
)

// RecipeRoutes registers recipe and recipe-category endpoints. Reads are
// public; writes require an admin access token.
func RecipeRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	recipes := handlers.NewRecipeHandler(svcs)
	categories := handlers.NewRecipeCategoryHandler(svcs)
	admin := func(r chi.Router) {
		r.Use(auth.RequireAuth(a.Tokens, a.Logger), auth.RequireAdmin(a.Logger))
	}

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", recipes.List)
		r.Get("/{id}", recipes.Get)
		r.Group(func(r chi.Router) {
			admin(r)
			r.Post("/", recipes.Create)
			r.Put("/{id}", recipes.Update)
			r.Delete("/{id}", recipes.Delete)
		})
	})

	r.Route("/recipe-categories", func(r chi.Router) {
		r.Get("/", categories.List)
		r.Group(func(r chi.Router) {
			admin(r)
			r.Post("/", categories.Create)
			r.Put("/{id}", categories.Update)
			r.Delete("/{id}", categories.Delete)
		})
	})
}
