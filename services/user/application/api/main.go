package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/services/user/application/handlers"
	appsvcs "github.com/ghuser/pantry/services/user/application/services"
)

// UserRoutes registers account, menu and shopping-list endpoints.
func UserRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	authH := handlers.NewAuthHandler(svcs, a.SessionStore, a.Logger)
	users := handlers.NewUserHandler(svcs)
	requireAuth := auth.RequireAuth(a.Tokens, a.Logger)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", authH.Register)
		r.Post("/login", authH.Login)
		r.Get("/refresh-token", authH.Refresh)
		r.Post("/logout", authH.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authH.Me)
			r.Put("/{id}", users.Update)
			r.Get("/{id}/shopping-list", users.GetShoppingList)
			r.Put("/{id}/shopping-list", users.ToggleLine)
		})
	})

	r.With(requireAuth).Get("/recipe-menu", users.GetMenu)
}
