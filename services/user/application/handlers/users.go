package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/errhttp"
	"github.com/ghuser/pantry/pkg/httpx"
	pkgvalidator "github.com/ghuser/pantry/pkg/validator"
	appsvcs "github.com/ghuser/pantry/services/user/application/services"
)

// UserHandler serves the caller's menu, planning fields and shopping list.
type UserHandler struct {
	svc *appsvcs.Services
}

func NewUserHandler(svc *appsvcs.Services) *UserHandler {
	return &UserHandler{svc: svc}
}

// Update changes favourites, menu, regular or extra items. A new menu or new
// regular items rebuild the shopping list.
//
//	@Summary	Update user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"User ID"
//	@Param		request	body		UpdateUserRequest	true	"Fields to change"
//	@Success	200		{object}	UpdateUserResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.self(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateUserRequest](w, r)
	if !ok {
		return
	}
	res, err := h.svc.Users.UpdateUser(r.Context(), id, req.toPatch())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	missing := res.MissingRecipes
	if missing == nil {
		missing = []uuid.UUID{}
	}
	httpx.JSON(w, http.StatusOK, UpdateUserResponse{
		UserResponse:   toUserResponse(res.User),
		ShoppingList:   toLineDTOs(res.ShoppingList),
		MissingRecipes: missing,
	})
}

// GetShoppingList returns the merged shopping list.
//
//	@Summary	Get shopping list
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	ShoppingListResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/users/{id}/shopping-list [get]
func (h *UserHandler) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	id, ok := h.self(w, r)
	if !ok {
		return
	}
	lines, err := h.svc.Users.GetShoppingList(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ShoppingListResponse{ShoppingList: toLineDTOs(lines)})
}

// ToggleLine flips obtained on one (item_id, unit) line.
//
//	@Summary	Toggle shopping list line
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"User ID"
//	@Param		request	body		ToggleLineRequest	true	"Line key"
//	@Success	200		{object}	ShoppingListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/users/{id}/shopping-list [put]
func (h *UserHandler) ToggleLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.self(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ToggleLineRequest](w, r)
	if !ok {
		return
	}
	lines, err := h.svc.Users.ToggleLine(r.Context(), id, uuid.MustParse(req.ItemID), req.Unit)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ShoppingListResponse{ShoppingList: toLineDTOs(lines)})
}

// GetMenu returns the caller's recipe menu.
//
//	@Summary	Get recipe menu
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	MenuResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/recipe-menu [get]
func (h *UserHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	menu, err := h.svc.Users.GetMenu(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MenuResponse{RecipeMenu: toMenuDTOs(menu)})
}

// self parses {id} and rejects callers acting on another user.
func (h *UserHandler) self(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return uuid.Nil, false
	}
	if err := auth.RequireSelf(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return uuid.Nil, false
	}
	return id, true
}
