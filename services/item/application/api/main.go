package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/services/item/application/handlers"
	appsvcs "github.com/ghuser/pantry/services/item/application/services"
)

// ItemRoutes registers item and item-category endpoints on the provided chi router.
// Reads are public; writes require an admin access token.
func ItemRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	items := handlers.NewItemHandler(svcs)
	categories := handlers.NewItemCategoryHandler(svcs)
	admin := func(r chi.Router) {
		r.Use(auth.RequireAuth(a.Tokens, a.Logger), auth.RequireAdmin(a.Logger))
	}

	r.Route("/items", func(r chi.Router) {
		r.Get("/", items.List)
		r.Get("/{id}", items.Get)
		r.Group(func(r chi.Router) {
			admin(r)
			r.Post("/", items.Create)
			r.Put("/{id}", items.Update)
			r.Delete("/{id}", items.Delete)
		})
	})

	r.Route("/item-categories", func(r chi.Router) {
		r.Get("/", categories.List)
		r.Group(func(r chi.Router) {
			admin(r)
			r.Post("/", categories.Create)
			r.Put("/{id}", categories.Update)
		})
	})
}
