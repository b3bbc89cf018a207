package models

import (
	"time"

	"github.com/google/uuid"
)

// Ingredient is one line of a recipe, quantified for a single serving.
type Ingredient struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
}

// Image references the picture uploaded for a recipe.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Recipe is the aggregate root of the recipe context. Ingredients,
// instructions, notes and category ids are stored and loaded whole.
type Recipe struct {
	ID            uuid.UUID
	Name          string
	TimeInMinutes int
	Image         Image
	Ingredients   []Ingredient
	Instructions  []string
	Notes         []string
	CategoryIDs   []uuid.UUID
	CreatedBy     uuid.UUID
	Approved      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRecipe constructs a Recipe with a generated ID. Recipes created by an
// administrator are approved immediately.
func NewRecipe(name string, createdBy uuid.UUID, byAdmin bool) *Recipe {
	now := time.Now().UTC()
	return &Recipe{
		ID:           uuid.New(),
		Name:         name,
		Ingredients:  []Ingredient{},
		Instructions: []string{},
		Notes:        []string{},
		CategoryIDs:  []uuid.UUID{},
		CreatedBy:    createdBy,
		Approved:     byAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasItem reports whether any ingredient references itemID.
func (r *Recipe) HasItem(itemID uuid.UUID) bool {
	for _, in := range r.Ingredients {
		if in.ItemID == itemID {
			return true
		}
	}
	return false
}

// RemoveItem drops every ingredient that references itemID and reports
// whether anything changed.
func (r *Recipe) RemoveItem(itemID uuid.UUID) bool {
	kept := make([]Ingredient, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		if in.ItemID != itemID {
			kept = append(kept, in)
		}
	}
	changed := len(kept) != len(r.Ingredients)
	r.Ingredients = kept
	return changed
}

// RecipeCategory labels recipes, e.g. "Breakfast".
type RecipeCategory struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// NewRecipeCategory constructs a RecipeCategory with a generated ID.
func NewRecipeCategory(name string) *RecipeCategory {
	return &RecipeCategory{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
}
