package domain

import "errors"

// Sentinel errors for the recipe domain. Use errors.Is() to check these.
var (
	// ErrRecipeNotFound indicates the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrInvalidRecipe indicates a recipe violates domain constraints
	// (name, time, instructions or ingredients).
	ErrInvalidRecipe = errors.New("invalid recipe")

	// ErrRecipeCategoryNotFound indicates a referenced recipe category does not exist.
	ErrRecipeCategoryNotFound = errors.New("recipe category not found")

	// ErrRecipeCategoryAlreadyExists indicates a category with the same name exists.
	ErrRecipeCategoryAlreadyExists = errors.New("recipe category already exists")

	// ErrInvalidRecipeCategory indicates the category name violates domain constraints.
	ErrInvalidRecipeCategory = errors.New("invalid recipe category")
)
