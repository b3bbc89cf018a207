// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/httpx"
	itemdomain "github.com/ghuser/pantry/services/item/domain"
	recipedomain "github.com/ghuser/pantry/services/recipe/domain"
	userdomain "github.com/ghuser/pantry/services/user/domain"
)

var production atomic.Bool

// SetProduction enables masking of 5xx messages. Called once at startup.
func SetProduction(on bool) {
	production.Store(on)
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, production.Load()))
}

func mapErrorToStatus(err error) int {
	switch {
	// 401 / 403
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrNoRefreshSession),
		errors.Is(err, userdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden

	// 404
	case errors.Is(err, itemdomain.ErrItemNotFound),
		errors.Is(err, itemdomain.ErrItemCategoryNotFound),
		errors.Is(err, recipedomain.ErrRecipeNotFound),
		errors.Is(err, recipedomain.ErrRecipeCategoryNotFound),
		errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, userdomain.ErrLineNotFound):
		return http.StatusNotFound

	// 409
	case errors.Is(err, itemdomain.ErrItemAlreadyExists),
		errors.Is(err, itemdomain.ErrItemCategoryAlreadyExists),
		errors.Is(err, recipedomain.ErrRecipeCategoryAlreadyExists),
		errors.Is(err, userdomain.ErrUsernameTaken),
		errors.Is(err, userdomain.ErrVersionConflict):
		return http.StatusConflict

	// 422
	case errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, itemdomain.ErrInvalidItemCategory),
		errors.Is(err, recipedomain.ErrInvalidRecipe),
		errors.Is(err, recipedomain.ErrInvalidRecipeCategory),
		errors.Is(err, userdomain.ErrInvalidUsername),
		errors.Is(err, userdomain.ErrInvalidPassword),
		errors.Is(err, userdomain.ErrInvalidMenu),
		errors.Is(err, userdomain.ErrInvalidQuantity),
		errors.Is(err, userdomain.ErrInvalidUnit),
		errors.Is(err, userdomain.ErrMissingItemID):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
