package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/errhttp"
	"github.com/ghuser/pantry/pkg/httpx"
	pkgvalidator "github.com/ghuser/pantry/pkg/validator"
	appsvcs "github.com/ghuser/pantry/services/item/application/services"
	"github.com/ghuser/pantry/services/item/domain/repositories"
)

// ItemHandler serves the /items endpoints.
type ItemHandler struct {
	svc *appsvcs.Services
}

// NewItemHandler returns an ItemHandler backed by the given services.
func NewItemHandler(svc *appsvcs.Services) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List returns items sorted by name.
//
//	@Summary		List items
//	@Tags			items
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (0 returns all)"
//	@Param			offset	query		int	false	"Items to skip"
//	@Success		200		{object}	ItemListResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := httpx.QueryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	offset, ok := httpx.QueryInt(w, r, "offset", 0)
	if !ok {
		return
	}

	items, total, err := h.svc.Item.List(r.Context(), repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ItemListResponse{Items: make([]ItemResponse, 0, len(items)), Total: total, Limit: limit, Offset: offset}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Get returns a single item.
//
//	@Summary		Get item
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item ID"
//	@Success		200	{object}	ItemResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/items/{id} [get]
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.svc.Item.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// Create adds a new item.
//
//	@Summary		Create item
//	@Description	Creates a new item in an existing item category (admin only)
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Create(r.Context(), appsvcs.ItemInput{
		Name:       req.Name,
		CategoryID: uuid.MustParse(req.CategoryID),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.Created(w, r, item.ID.String(), toItemResponse(item))
}

// Update renames an item or moves it to another category.
//
//	@Summary		Update item
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string		true	"Item ID"
//	@Param			request	body		ItemRequest	true	"Item update request"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items/{id} [put]
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Update(r.Context(), id, appsvcs.ItemInput{
		Name:       req.Name,
		CategoryID: uuid.MustParse(req.CategoryID),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// Delete removes an item. Recipes and shopping lists drop it asynchronously.
//
//	@Summary		Delete item
//	@Tags			items
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Item ID"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/items/{id} [delete]
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Item.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
