// Package recipes adapts the recipe context's ingredient lookup to the
// shopping-list model of the user context.
package recipes

import (
	"context"

	"github.com/google/uuid"

	recipemodels "github.com/ghuser/pantry/services/recipe/domain/models"
	"github.com/ghuser/pantry/services/user/domain/models"
)

// IngredientSource is satisfied by the recipe application service.
type IngredientSource interface {
	ResolveIngredients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]recipemodels.Ingredient, error)
}

// Lookup implements repositories.RecipeLookup on top of an IngredientSource.
type Lookup struct {
	src IngredientSource
}

func NewLookup(src IngredientSource) *Lookup {
	return &Lookup{src: src}
}

// Resolve fetches all ids in one call and converts the result.
func (l *Lookup) Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.Ingredient, error) {
	if len(ids) == 0 {
		return map[uuid.UUID][]models.Ingredient{}, nil
	}
	src, err := l.src.ResolveIngredients(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]models.Ingredient, len(src))
	for id, ings := range src {
		conv := make([]models.Ingredient, len(ings))
		for i, in := range ings {
			conv[i] = models.Ingredient(in)
		}
		out[id] = conv
	}
	return out, nil
}
