package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/item/domain/models"
)

// ItemRequest is the request body for POST /items and PUT /items/{id}.
type ItemRequest struct {
	Name       string `json:"name"        validate:"required,notblank,max=255" example:"Whole milk"`
	CategoryID string `json:"category_id" validate:"required,uuid"          example:"550e8400-e29b-41d4-a716-446655440000"`
} // @name ItemRequest

// ItemResponse is the public representation of an item.
type ItemResponse struct {
	ID           uuid.UUID `json:"id"            example:"123e4567-e89b-12d3-a456-426614174000"`
	Name         string    `json:"name"          example:"Whole milk"`
	CategoryID   uuid.UUID `json:"category_id"   example:"550e8400-e29b-41d4-a716-446655440000"`
	CategoryName string    `json:"category_name" example:"Dairy"`
	CreatedAt    time.Time `json:"created_at"    example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// ItemListResponse is returned by GET /items.
type ItemListResponse struct {
	Items  []ItemResponse `json:"items"`
	Total  int            `json:"total"  example:"42"`
	Limit  int            `json:"limit"  example:"0"`
	Offset int            `json:"offset" example:"0"`
} // @name ItemListResponse

// ItemCategoryRequest is the request body for POST /item-categories and PUT /item-categories/{id}.
type ItemCategoryRequest struct {
	Name   string `json:"name"    validate:"required,notblank,max=255" example:"Dairy"`
	FaIcon string `json:"fa_icon" validate:"required,fa_icon"       example:"fa-cheese"`
} // @name ItemCategoryRequest

// ItemCategoryResponse is the public representation of an item category.
type ItemCategoryResponse struct {
	ID        uuid.UUID `json:"id"         example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string    `json:"name"       example:"Dairy"`
	FaIcon    string    `json:"fa_icon"    example:"fa-cheese"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name ItemCategoryResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
} // @name ErrorResponse

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		Name:         item.Name.String(),
		CategoryID:   item.CategoryID,
		CategoryName: item.CategoryName,
		CreatedAt:    item.CreatedAt,
	}
}

func toItemCategoryResponse(c *models.ItemCategory) ItemCategoryResponse {
	return ItemCategoryResponse{
		ID:        c.ID,
		Name:      c.Name.String(),
		FaIcon:    c.FaIcon,
		CreatedAt: c.CreatedAt,
	}
}
