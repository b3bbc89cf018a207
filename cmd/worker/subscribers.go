package main

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/events"
	"github.com/ghuser/pantry/pkg/telemetry"
	itemsvcs "github.com/ghuser/pantry/services/item/application/services"
	itemEvents "github.com/ghuser/pantry/services/item/domain/events"
	recipesvcs "github.com/ghuser/pantry/services/recipe/application/services"
	recipeEvents "github.com/ghuser/pantry/services/recipe/domain/events"
	usersvcs "github.com/ghuser/pantry/services/user/application/services"
	userpostgres "github.com/ghuser/pantry/services/user/infrastructure/persistence/postgres"
	"github.com/ghuser/pantry/services/user/infrastructure/recipes"
)

type services struct {
	items   *itemsvcs.Services
	recipes *recipesvcs.Services
	users   *usersvcs.Services
}

func newServices(a *app.Application) *services {
	userRepo := userpostgres.NewUserRepository(a.Db)
	recipeSvcs := recipesvcs.New(a, userRepo)
	return &services{
		items:   itemsvcs.New(a),
		recipes: recipeSvcs,
		users:   usersvcs.New(a, userRepo, recipes.NewLookup(recipeSvcs.Recipe)),
	}
}

// subscribers maps every consumed topic to its handler. Handlers must be
// idempotent: the bus redelivers on failure.
func subscribers(a *app.Application, s *services) map[string]events.Handler {
	handlers := map[string]events.Handler{
		itemEvents.TopicItemCreated:     events.Typed(a.EventBus, handleItemCreated(a, s)),
		itemEvents.TopicItemDeleted:     events.Typed(a.EventBus, handleItemDeleted(a, s)),
		recipeEvents.TopicRecipeUpdated: events.Typed(a.EventBus, handleRecipeUpdated(a, s)),
		recipeEvents.TopicRecipeDeleted: events.Typed(a.EventBus, handleRecipeDeleted(a, s)),
	}
	for topic, h := range handlers {
		handlers[topic] = reported(topic, h)
	}
	return handlers
}

// reported forwards handler failures to Sentry before the bus nacks them.
func reported(topic string, h events.Handler) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		err := h(ctx, msg)
		if err != nil {
			telemetry.CaptureError(ctx, err, map[string]string{"topic": topic, "message_uuid": msg.UUID})
		}
		return err
	}
}

// handleItemCreated warms the Redis read model. Cache warming is best-effort.
func handleItemCreated(a *app.Application, s *services) func(context.Context, itemEvents.ItemCreatedEvent) error {
	return func(ctx context.Context, evt itemEvents.ItemCreatedEvent) error {
		if err := s.items.Item.WarmCache(ctx, evt.ItemID); err != nil {
			a.Logger.WarnContext(ctx, "cache warm failed for item.created", "item_id", evt.ItemID, "error", err)
			return nil
		}
		a.Logger.InfoContext(ctx, "cache warmed", "item_id", evt.ItemID, "category_id", evt.CategoryID)
		return nil
	}
}

// handleItemDeleted strips the item from recipes and from every user's
// list, extras and regulars. Pruned recipes publish recipe.updated, which
// recomputes the affected menus.
func handleItemDeleted(a *app.Application, s *services) func(context.Context, itemEvents.ItemDeletedEvent) error {
	return func(ctx context.Context, evt itemEvents.ItemDeletedEvent) error {
		pruned, err := s.recipes.Recipe.PruneItem(ctx, evt.ItemID)
		if err != nil {
			return fmt.Errorf("prune item from recipes: %w", err)
		}
		users, err := s.users.Users.RemoveItem(ctx, evt.ItemID)
		if err != nil {
			return fmt.Errorf("remove item from users: %w", err)
		}
		a.Logger.InfoContext(ctx, "deleted item pruned",
			"item_id", evt.ItemID, "recipes", len(pruned), "users", users)
		return nil
	}
}

// handleRecipeUpdated recomputes the lists of users whose menu contains the
// recipe, through Temporal when it is enabled.
func handleRecipeUpdated(a *app.Application, s *services) func(context.Context, recipeEvents.RecipeUpdatedEvent) error {
	return func(ctx context.Context, evt recipeEvents.RecipeUpdatedEvent) error {
		if a.TemporalClient != nil {
			return a.TemporalClient.StartRecompute(ctx, evt.RecipeID, evt.EventID)
		}
		n, err := s.users.Users.RecomputeForRecipe(ctx, evt.RecipeID)
		if err != nil {
			return fmt.Errorf("recompute shopping lists for recipe %s: %w", evt.RecipeID, err)
		}
		a.Logger.InfoContext(ctx, "shopping lists recomputed", "recipe_id", evt.RecipeID, "users", n)
		return nil
	}
}

// handleRecipeDeleted drops the recipe from favourites and menus.
func handleRecipeDeleted(a *app.Application, s *services) func(context.Context, recipeEvents.RecipeDeletedEvent) error {
	return func(ctx context.Context, evt recipeEvents.RecipeDeletedEvent) error {
		n, err := s.users.Users.RemoveRecipe(ctx, evt.RecipeID)
		if err != nil {
			return fmt.Errorf("remove recipe %s from users: %w", evt.RecipeID, err)
		}
		a.Logger.InfoContext(ctx, "deleted recipe removed from users", "recipe_id", evt.RecipeID, "users", n)
		return nil
	}
}
