package handlers

import (
	"time"

	"github.com/google/uuid"

	appsvcs "github.com/ghuser/pantry/services/recipe/application/services"
	"github.com/ghuser/pantry/services/recipe/domain/models"
)

// IngredientDTO is one recipe ingredient, quantified for a single serving.
type IngredientDTO struct {
	ItemID   string  `json:"item_id"  validate:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity float64 `json:"quantity" validate:"gt=0,lte=1000000" example:"250"`
	Unit     string  `json:"unit"     validate:"required,notblank,max=32" example:"g"`
} // @name Ingredient

// ImageDTO references an uploaded recipe picture.
type ImageDTO struct {
	URL      string `json:"url"      validate:"omitempty,url,max=2048" example:"https://cdn.example.com/pancakes.jpg"`
	Filename string `json:"filename" validate:"max=255"                example:"pancakes.jpg"`
} // @name Image

// RecipeRequest is the request body for POST /recipes and PUT /recipes/{id}.
type RecipeRequest struct {
	Name          string          `json:"name"            validate:"required,notblank,max=255" example:"Pancakes"`
	TimeInMinutes int             `json:"time_in_minutes" validate:"gt=0"                   example:"20"`
	Image         ImageDTO        `json:"image"`
	Ingredients   []IngredientDTO `json:"ingredients"     validate:"dive"`
	Instructions  []string        `json:"instructions"    validate:"required,min=1,dive,required"`
	Notes         []string        `json:"notes"`
	CategoryIDs   []string        `json:"category_ids"    validate:"dive,uuid"`
} // @name RecipeRequest

// RecipeResponse is the public representation of a recipe.
type RecipeResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"            example:"Pancakes"`
	TimeInMinutes int             `json:"time_in_minutes" example:"20"`
	Image         ImageDTO        `json:"image"`
	Ingredients   []IngredientDTO `json:"ingredients"`
	Instructions  []string        `json:"instructions"`
	Notes         []string        `json:"notes"`
	CategoryIDs   []uuid.UUID     `json:"category_ids"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	Approved      bool            `json:"approved"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
} // @name RecipeResponse

// RecipeDetailResponse expands categories and the creator's username.
type RecipeDetailResponse struct {
	RecipeResponse
	Categories        []RecipeCategoryResponse `json:"categories"`
	CreatedByUsername string                   `json:"created_by_username" example:"chef"`
} // @name RecipeDetailResponse

// RecipeListResponse is returned by GET /recipes.
type RecipeListResponse struct {
	Recipes []RecipeResponse `json:"recipes"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
} // @name RecipeListResponse

// RecipeCategoryRequest is the request body for recipe category writes.
type RecipeCategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255" example:"Breakfast"`
} // @name RecipeCategoryRequest

// RecipeCategoryResponse is the public representation of a recipe category.
type RecipeCategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" example:"Breakfast"`
	CreatedAt time.Time `json:"created_at"`
} // @name RecipeCategoryResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"recipe not found"`
} // @name RecipeErrorResponse

// toInput converts a validated request; ids were checked by the uuid tags.
func (req *RecipeRequest) toInput() appsvcs.RecipeInput {
	in := appsvcs.RecipeInput{
		Name:          req.Name,
		TimeInMinutes: req.TimeInMinutes,
		Image:         models.Image{URL: req.Image.URL, Filename: req.Image.Filename},
		Ingredients:   make([]models.Ingredient, 0, len(req.Ingredients)),
		Instructions:  req.Instructions,
		Notes:         req.Notes,
		CategoryIDs:   make([]uuid.UUID, 0, len(req.CategoryIDs)),
	}
	for _, ing := range req.Ingredients {
		in.Ingredients = append(in.Ingredients, models.Ingredient{
			ItemID:   uuid.MustParse(ing.ItemID),
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	for _, id := range req.CategoryIDs {
		in.CategoryIDs = append(in.CategoryIDs, uuid.MustParse(id))
	}
	return in
}

func toRecipeResponse(r *models.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:            r.ID,
		Name:          r.Name,
		TimeInMinutes: r.TimeInMinutes,
		Image:         ImageDTO{URL: r.Image.URL, Filename: r.Image.Filename},
		Ingredients:   make([]IngredientDTO, 0, len(r.Ingredients)),
		Instructions:  r.Instructions,
		Notes:         r.Notes,
		CategoryIDs:   r.CategoryIDs,
		CreatedBy:     r.CreatedBy,
		Approved:      r.Approved,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, ing := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, IngredientDTO{
			ItemID:   ing.ItemID.String(),
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	return resp
}

func toRecipeCategoryResponse(c *models.RecipeCategory) RecipeCategoryResponse {
	return RecipeCategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}
