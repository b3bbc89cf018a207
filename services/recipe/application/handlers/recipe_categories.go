package handlers

import (
	"net/http"

	"github.com/ghuser/pantry/pkg/errhttp"
	"github.com/ghuser/pantry/pkg/httpx"
	pkgvalidator "github.com/ghuser/pantry/pkg/validator"
	appsvcs "github.com/ghuser/pantry/services/recipe/application/services"
)

// RecipeCategoryHandler serves the /recipe-categories endpoints.
type RecipeCategoryHandler struct {
	svc *appsvcs.Services
}

func NewRecipeCategoryHandler(svc *appsvcs.Services) *RecipeCategoryHandler {
	return &RecipeCategoryHandler{svc: svc}
}

// List returns all recipe categories.
//
//	@Summary	List recipe categories
//	@Tags		recipe-categories
//	@Produce	json
//	@Success	200	{array}	RecipeCategoryResponse
//	@Router		/recipe-categories [get]
func (h *RecipeCategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.RecipeCategory.List(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := make([]RecipeCategoryResponse, 0, len(cs))
	for _, c := range cs {
		resp = append(resp, toRecipeCategoryResponse(c))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Create adds a recipe category.
//
//	@Summary	Create recipe category
//	@Tags		recipe-categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		RecipeCategoryRequest	true	"Category"
//	@Success	201		{object}	RecipeCategoryResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/recipe-categories [post]
func (h *RecipeCategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RecipeCategoryRequest](w, r)
	if !ok {
		return
	}
	c, err := h.svc.RecipeCategory.Create(r.Context(), req.Name)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.Created(w, r, c.ID.String(), toRecipeCategoryResponse(c))
}

// Update renames a recipe category.
//
//	@Summary	Update recipe category
//	@Tags		recipe-categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Category ID"
//	@Param		request	body		RecipeCategoryRequest	true	"Category"
//	@Success	200		{object}	RecipeCategoryResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/recipe-categories/{id} [put]
func (h *RecipeCategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RecipeCategoryRequest](w, r)
	if !ok {
		return
	}
	c, err := h.svc.RecipeCategory.Update(r.Context(), id, req.Name)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecipeCategoryResponse(c))
}

// Delete removes a recipe category and strips it from every recipe.
//
//	@Summary	Delete recipe category
//	@Tags		recipe-categories
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Category ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/recipe-categories/{id} [delete]
func (h *RecipeCategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RecipeCategory.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
