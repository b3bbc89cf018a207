package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is anything that can appear on a shopping list or in a recipe.
// CategoryName is filled on reads only.
type Item struct {
	ID           uuid.UUID
	Name         Name
	CategoryID   uuid.UUID
	CategoryName string
	CreatedAt    time.Time
}

// NewItem constructs an Item with generated ID and current timestamp.
func NewItem(name Name, categoryID uuid.UUID) *Item {
	return &Item{
		ID:         uuid.New(),
		Name:       name,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
	}
}

// ItemCategory groups items on the shopping list, e.g. "Dairy" with icon "fa-cheese".
type ItemCategory struct {
	ID        uuid.UUID
	Name      Name
	FaIcon    string
	CreatedAt time.Time
}

// NewItemCategory constructs an ItemCategory with generated ID and current timestamp.
func NewItemCategory(name Name, faIcon string) *ItemCategory {
	return &ItemCategory{
		ID:        uuid.New(),
		Name:      name,
		FaIcon:    faIcon,
		CreatedAt: time.Now().UTC(),
	}
}
