package services

import (
	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/cache"
	"github.com/ghuser/pantry/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item         *ItemService
	ItemCategory *ItemCategoryService
}

// New wires all item application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	categories := postgres.NewItemCategoryRepository(a.Db)
	items := postgres.NewItemRepository(a.Db, a.EventBus)

	var itemCache ItemCache
	if a.Redis != nil {
		itemCache = cache.NewItemCache(a.Redis)
	}

	return &Services{
		Item:         NewItemService(items, categories, itemCache, a.Logger),
		ItemCategory: NewItemCategoryService(categories),
	}
}
