package handlers

import (
	"time"

	"github.com/google/uuid"

	appsvcs "github.com/ghuser/pantry/services/user/application/services"
	"github.com/ghuser/pantry/services/user/domain/models"
)

// RegisterRequest is the request body for POST /users.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=30"       example:"alice"`
	Password string `json:"password" validate:"required,min=6,max=20" example:"s3cret!"`
} // @name RegisterRequest

// LoginRequest is the request body for POST /users/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"s3cret!"`
} // @name LoginRequest

// MenuEntryDTO is a recipe on the menu with its serving multiplier.
type MenuEntryDTO struct {
	RecipeID string `json:"recipe_id" validate:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Serves   int    `json:"serves"    validate:"gt=0,lte=1000"  example:"2"`
} // @name MenuEntry

// QuantityDTO is an (item, quantity, unit) entry used for regular and extra items.
type QuantityDTO struct {
	ItemID   string  `json:"item_id"  validate:"required,uuid"   example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity float64 `json:"quantity" validate:"gt=0,lte=1000000" example:"1.5"`
	Unit     string  `json:"unit"     validate:"required,notblank,max=32" example:"kg"`
	Obtained bool    `json:"obtained" example:"false"`
} // @name QuantityEntry

// UpdateUserRequest is the request body for PUT /users/{id}. Omitted fields
// are left unchanged; version, when set, must match the stored user.
type UpdateUserRequest struct {
	FavouriteRecipes *[]string       `json:"favourite_recipes" validate:"omitempty,dive,uuid"`
	RecipeMenu       *[]MenuEntryDTO `json:"recipe_menu"       validate:"omitempty,dive"`
	RegularItems     *[]QuantityDTO  `json:"regular_items"     validate:"omitempty,dive"`
	ExtraItems       *[]QuantityDTO  `json:"extra_items"       validate:"omitempty,dive"`
	Version          *int64          `json:"version"           validate:"omitempty,gt=0" example:"3"`
} // @name UpdateUserRequest

// ToggleLineRequest is the request body for PUT /users/{id}/shopping-list.
type ToggleLineRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"   example:"123e4567-e89b-12d3-a456-426614174000"`
	Unit   string `json:"unit"    validate:"required,notblank,max=32" example:"g"`
} // @name ToggleLineRequest

// ShoppingListLineDTO is one aggregated line of a shopping list.
type ShoppingListLineDTO struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity" example:"200"`
	Unit     string    `json:"unit"     example:"g"`
	Obtained bool      `json:"obtained" example:"false"`
} // @name ShoppingListLine

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID               uuid.UUID      `json:"id"`
	Username         string         `json:"username" example:"alice"`
	IsAdmin          bool           `json:"is_admin"`
	FavouriteRecipes []uuid.UUID    `json:"favourite_recipes"`
	RecipeMenu       []MenuEntryDTO `json:"recipe_menu"`
	RegularItems     []QuantityDTO  `json:"regular_items"`
	ExtraItems       []QuantityDTO  `json:"extra_items"`
	Version          int64          `json:"version" example:"3"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
} // @name UserResponse

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
} // @name AuthResponse

// UpdateUserResponse is the user after PUT /users/{id} with its merged
// shopping list. MissingRecipes lists menu recipes that no longer exist.
type UpdateUserResponse struct {
	UserResponse
	ShoppingList   []ShoppingListLineDTO `json:"shopping_list"`
	MissingRecipes []uuid.UUID           `json:"missing_recipes"`
} // @name UpdateUserResponse

// ShoppingListResponse is returned by the shopping-list endpoints.
type ShoppingListResponse struct {
	ShoppingList []ShoppingListLineDTO `json:"shopping_list"`
} // @name ShoppingListResponse

// MenuResponse is returned by GET /recipe-menu.
type MenuResponse struct {
	RecipeMenu []MenuEntryDTO `json:"recipe_menu"`
} // @name MenuResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"user not found"`
} // @name UserErrorResponse

// toPatch converts a validated request; ids were checked by the uuid tags.
func (req *UpdateUserRequest) toPatch() appsvcs.UserPatch {
	patch := appsvcs.UserPatch{ExpectedVersion: req.Version}
	if req.FavouriteRecipes != nil {
		ids := make([]uuid.UUID, 0, len(*req.FavouriteRecipes))
		for _, id := range *req.FavouriteRecipes {
			ids = append(ids, uuid.MustParse(id))
		}
		patch.FavouriteRecipes = &ids
	}
	if req.RecipeMenu != nil {
		menu := make([]models.MenuEntry, 0, len(*req.RecipeMenu))
		for _, e := range *req.RecipeMenu {
			menu = append(menu, models.MenuEntry{RecipeID: uuid.MustParse(e.RecipeID), Serves: e.Serves})
		}
		patch.RecipeMenu = &menu
	}
	if req.RegularItems != nil {
		regulars := make([]models.RegularItem, 0, len(*req.RegularItems))
		for _, q := range *req.RegularItems {
			regulars = append(regulars, models.RegularItem{ItemID: uuid.MustParse(q.ItemID), Quantity: q.Quantity, Unit: q.Unit})
		}
		patch.RegularItems = &regulars
	}
	if req.ExtraItems != nil {
		extras := make([]models.ExtraItem, 0, len(*req.ExtraItems))
		for _, q := range *req.ExtraItems {
			extras = append(extras, models.ExtraItem{ItemID: uuid.MustParse(q.ItemID), Quantity: q.Quantity, Unit: q.Unit, Obtained: q.Obtained})
		}
		patch.ExtraItems = &extras
	}
	return patch
}

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:               u.ID,
		Username:         u.Username.String(),
		IsAdmin:          u.IsAdmin,
		FavouriteRecipes: u.FavouriteRecipes,
		RecipeMenu:       toMenuDTOs(u.RecipeMenu),
		RegularItems:     make([]QuantityDTO, 0, len(u.RegularItems)),
		ExtraItems:       make([]QuantityDTO, 0, len(u.ExtraItems)),
		Version:          u.Version,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	if resp.FavouriteRecipes == nil {
		resp.FavouriteRecipes = []uuid.UUID{}
	}
	for _, r := range u.RegularItems {
		resp.RegularItems = append(resp.RegularItems, QuantityDTO{ItemID: r.ItemID.String(), Quantity: r.Quantity, Unit: r.Unit})
	}
	for _, x := range u.ExtraItems {
		resp.ExtraItems = append(resp.ExtraItems, QuantityDTO{ItemID: x.ItemID.String(), Quantity: x.Quantity, Unit: x.Unit, Obtained: x.Obtained})
	}
	return resp
}

func toMenuDTOs(menu []models.MenuEntry) []MenuEntryDTO {
	out := make([]MenuEntryDTO, 0, len(menu))
	for _, e := range menu {
		out = append(out, MenuEntryDTO{RecipeID: e.RecipeID.String(), Serves: e.Serves})
	}
	return out
}

func toLineDTOs(lines []models.ShoppingListLine) []ShoppingListLineDTO {
	out := make([]ShoppingListLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, ShoppingListLineDTO(l))
	}
	return out
}

func toAuthResponse(s *appsvcs.Session) AuthResponse {
	return AuthResponse{User: toUserResponse(s.User), AccessToken: s.AccessToken, ExpiresAt: s.AccessExpiresAt}
}
