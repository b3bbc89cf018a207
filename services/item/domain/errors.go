package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates an item with the same name already exists.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrInvalidItemName indicates the item name violates domain constraints.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrItemCategoryNotFound indicates the referenced item category does not exist.
	ErrItemCategoryNotFound = errors.New("item category not found")

	// ErrItemCategoryAlreadyExists indicates a category name or icon is already used.
	ErrItemCategoryAlreadyExists = errors.New("item category already exists")

	// ErrInvalidItemCategory indicates the category name or icon violates domain constraints.
	ErrInvalidItemCategory = errors.New("invalid item category")
)
