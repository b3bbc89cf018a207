package models

import "github.com/google/uuid"

// Ingredient is one line of a recipe as seen by the shopping list:
// a base quantity of an item for a single serving.
type Ingredient struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
}

// MenuEntry is a recipe in the user's menu with its serving multiplier.
type MenuEntry struct {
	RecipeID uuid.UUID `json:"recipe_id"`
	Serves   int       `json:"serves"`
}

// RegularItem is an item bought on every shop. Regular items are folded into
// the menu-derived portion of the list at recompute.
type RegularItem struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
}

// ExtraItem is a one-off entry added by the user. It survives recompute and
// is merged onto the derived lines on every read.
type ExtraItem struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	Obtained bool      `json:"obtained"`
}

// ShoppingListLine is one aggregated entry of the list, identified by (ItemID, Unit).
type ShoppingListLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	Obtained bool      `json:"obtained"`
}

// LineKey is the identity of a shopping-list line. Unit must already be normalized.
type LineKey struct {
	ItemID uuid.UUID
	Unit   string
}

// Key returns the line's identity key.
func (l ShoppingListLine) Key() LineKey {
	return LineKey{ItemID: l.ItemID, Unit: l.Unit}
}
