// Package services holds the recipe context's pure domain rules.
package services

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/recipe/domain/models"
)

const (
	maxRecipeNameLength = 255
	// maxIngredientQuantity matches the per-quantity limit shopping lists accept.
	maxIngredientQuantity = 1_000_000
)

type ingredientKey struct {
	itemID uuid.UUID
	unit   string
}

// ValidateRecipe checks a Recipe before it is inserted or updated.
//
// Business rules:
//   - Name is 1..255 characters and not blank
//   - TimeInMinutes > 0
//   - At least one non-blank instruction
//   - Ingredients pass ValidateIngredients
func ValidateRecipe(r *models.Recipe) error {
	if r == nil {
		return fmt.Errorf("recipe cannot be nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxRecipeNameLength {
		return fmt.Errorf("name must not exceed %d characters", maxRecipeNameLength)
	}
	if r.TimeInMinutes <= 0 {
		return fmt.Errorf("time_in_minutes must be positive")
	}
	if len(r.Instructions) == 0 {
		return fmt.Errorf("at least one instruction is required")
	}
	for i, step := range r.Instructions {
		if strings.TrimSpace(step) == "" {
			return fmt.Errorf("instruction %d is blank", i+1)
		}
	}
	if r.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by must be set")
	}
	return ValidateIngredients(r.Ingredients)
}

// ValidateIngredients rejects non-positive, non-finite or oversized quantities, blank
// units, missing item ids and repeated (item_id, unit) pairs. Units compare
// case-insensitively, matching how shopping lists key their lines.
func ValidateIngredients(ingredients []models.Ingredient) error {
	seen := make(map[ingredientKey]struct{}, len(ingredients))
	for i, in := range ingredients {
		if in.ItemID == uuid.Nil {
			return fmt.Errorf("ingredient %d: item_id is required", i+1)
		}
		if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0 {
			return fmt.Errorf("ingredient %d: quantity must be a positive finite number", i+1)
		}
		if in.Quantity > maxIngredientQuantity {
			return fmt.Errorf("ingredient %d: quantity must not exceed %d", i+1, maxIngredientQuantity)
		}
		unit := strings.ToLower(strings.TrimSpace(in.Unit))
		if unit == "" {
			return fmt.Errorf("ingredient %d: unit is required", i+1)
		}
		k := ingredientKey{itemID: in.ItemID, unit: unit}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("ingredient %d: item %s already listed with unit %q", i+1, in.ItemID, in.Unit)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// ValidateCategoryName checks a recipe category name.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}
	if utf8.RuneCountInString(name) > maxRecipeNameLength {
		return fmt.Errorf("name must not exceed %d characters", maxRecipeNameLength)
	}
	return nil
}
