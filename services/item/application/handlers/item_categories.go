package handlers

import (
	"net/http"

	"github.com/ghuser/pantry/pkg/errhttp"
	"github.com/ghuser/pantry/pkg/httpx"
	pkgvalidator "github.com/ghuser/pantry/pkg/validator"
	appsvcs "github.com/ghuser/pantry/services/item/application/services"
)

// ItemCategoryHandler serves the /item-categories endpoints.
type ItemCategoryHandler struct {
	svc *appsvcs.Services
}

// NewItemCategoryHandler returns an ItemCategoryHandler backed by the given services.
func NewItemCategoryHandler(svc *appsvcs.Services) *ItemCategoryHandler {
	return &ItemCategoryHandler{svc: svc}
}

// List returns every item category.
//
//	@Summary	List item categories
//	@Tags		item-categories
//	@Produce	json
//	@Success	200	{array}	ItemCategoryResponse
//	@Router		/item-categories [get]
func (h *ItemCategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ItemCategory.List(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := make([]ItemCategoryResponse, 0, len(cs))
	for _, c := range cs {
		resp = append(resp, toItemCategoryResponse(c))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Create adds an item category.
//
//	@Summary	Create item category
//	@Tags		item-categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		ItemCategoryRequest	true	"Category creation request"
//	@Success	201		{object}	ItemCategoryResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/item-categories [post]
func (h *ItemCategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ItemCategoryRequest](w, r)
	if !ok {
		return
	}
	c, err := h.svc.ItemCategory.Create(r.Context(), appsvcs.CategoryInput{Name: req.Name, FaIcon: req.FaIcon})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.Created(w, r, c.ID.String(), toItemCategoryResponse(c))
}

// Update renames an item category or changes its icon.
//
//	@Summary	Update item category
//	@Tags		item-categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Category ID"
//	@Param		request	body		ItemCategoryRequest	true	"Category update request"
//	@Success	200		{object}	ItemCategoryResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/item-categories/{id} [put]
func (h *ItemCategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ItemCategoryRequest](w, r)
	if !ok {
		return
	}
	c, err := h.svc.ItemCategory.Update(r.Context(), id, appsvcs.CategoryInput{Name: req.Name, FaIcon: req.FaIcon})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemCategoryResponse(c))
}
