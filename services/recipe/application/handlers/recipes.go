package handlers

import (
	"net/http"

	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/errhttp"
	"github.com/ghuser/pantry/pkg/httpx"
	pkgvalidator "github.com/ghuser/pantry/pkg/validator"
	appsvcs "github.com/ghuser/pantry/services/recipe/application/services"
	"github.com/ghuser/pantry/services/recipe/domain/repositories"
)

// RecipeHandler serves the /recipes endpoints.
type RecipeHandler struct {
	svc *appsvcs.Services
}

func NewRecipeHandler(svc *appsvcs.Services) *RecipeHandler {
	return &RecipeHandler{svc: svc}
}

// List returns recipes sorted by name.
//
//	@Summary	List recipes
//	@Tags		recipes
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (0 returns all)"
//	@Param		offset	query		int	false	"Recipes to skip"
//	@Success	200		{object}	RecipeListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/recipes [get]
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := httpx.QueryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	offset, ok := httpx.QueryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	recs, total, err := h.svc.Recipe.List(r.Context(), repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := RecipeListResponse{Recipes: make([]RecipeResponse, 0, len(recs)), Total: total, Limit: limit, Offset: offset}
	for _, rec := range recs {
		resp.Recipes = append(resp.Recipes, toRecipeResponse(rec))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Get returns a recipe with expanded categories and the creator's username.
//
//	@Summary	Get recipe
//	@Tags		recipes
//	@Produce	json
//	@Param		id	path		string	true	"Recipe ID"
//	@Success	200	{object}	RecipeDetailResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/recipes/{id} [get]
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Recipe.Get(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := RecipeDetailResponse{
		RecipeResponse:    toRecipeResponse(detail.Recipe),
		Categories:        make([]RecipeCategoryResponse, 0, len(detail.Categories)),
		CreatedByUsername: detail.CreatedBy,
	}
	for _, c := range detail.Categories {
		resp.Categories = append(resp.Categories, toRecipeCategoryResponse(c))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Create adds a recipe authored by the caller.
//
//	@Summary	Create recipe
//	@Tags		recipes
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		RecipeRequest	true	"Recipe"
//	@Success	201		{object}	RecipeResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/recipes [post]
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	author, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RecipeRequest](w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Recipe.Create(r.Context(), author, req.toInput())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.Created(w, r, rec.ID.String(), toRecipeResponse(rec))
}

// Update replaces a recipe's content.
//
//	@Summary	Update recipe
//	@Tags		recipes
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Recipe ID"
//	@Param		request	body		RecipeRequest	true	"Recipe"
//	@Success	200		{object}	RecipeResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/recipes/{id} [put]
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RecipeRequest](w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Recipe.Update(r.Context(), id, req.toInput())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecipeResponse(rec))
}

// Delete removes a recipe.
//
//	@Summary	Delete recipe
//	@Tags		recipes
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Recipe ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/recipes/{id} [delete]
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Recipe.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
