package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the aggregate root for accounts and everything a user plans:
// favourites, the recipe menu, regular and extra items and the derived
// shopping-list snapshot. Version increments on every persisted change.
type User struct {
	ID               uuid.UUID
	Username         Username
	PasswordHash     string
	IsAdmin          bool
	FavouriteRecipes []uuid.UUID
	RecipeMenu       []MenuEntry
	RegularItems     []RegularItem
	ExtraItems       []ExtraItem
	// ShoppingList holds only the menu- and regular-derived lines.
	// Extras are merged onto it on read.
	ShoppingList []ShoppingListLine
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser constructs a User with a generated ID and empty collections.
func NewUser(username Username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:               uuid.New(),
		Username:         username,
		PasswordHash:     passwordHash,
		FavouriteRecipes: []uuid.UUID{},
		RecipeMenu:       []MenuEntry{},
		RegularItems:     []RegularItem{},
		ExtraItems:       []ExtraItem{},
		ShoppingList:     []ShoppingListLine{},
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// MenuRecipeIDs returns the recipe ids of the menu in order.
func (u *User) MenuRecipeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(u.RecipeMenu))
	for i, e := range u.RecipeMenu {
		ids[i] = e.RecipeID
	}
	return ids
}
