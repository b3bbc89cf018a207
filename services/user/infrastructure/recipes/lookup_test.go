package recipes

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	recipemodels "github.com/ghuser/pantry/services/recipe/domain/models"
)

type stubSource struct {
	calls int
	out   map[uuid.UUID][]recipemodels.Ingredient
	err   error
}

func (s *stubSource) ResolveIngredients(_ context.Context, _ []uuid.UUID) (map[uuid.UUID][]recipemodels.Ingredient, error) {
	s.calls++
	return s.out, s.err
}

func TestLookup_Resolve(t *testing.T) {
	recipeID, flour := uuid.New(), uuid.New()
	src := &stubSource{out: map[uuid.UUID][]recipemodels.Ingredient{
		recipeID: {{ItemID: flour, Quantity: 200, Unit: "g"}},
	}}

	got, err := NewLookup(src).Resolve(context.Background(), []uuid.UUID{recipeID, uuid.New()})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected one batched call, got %d", src.calls)
	}
	ings := got[recipeID]
	if len(ings) != 1 || ings[0].ItemID != flour || ings[0].Quantity != 200 || ings[0].Unit != "g" {
		t.Fatalf("unexpected ingredients: %+v", ings)
	}
}

func TestLookup_EmptyIDsSkipsSource(t *testing.T) {
	src := &stubSource{}
	got, err := NewLookup(src).Resolve(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", got, err)
	}
	if src.calls != 0 {
		t.Fatalf("source should not be called for an empty menu")
	}
}

func TestLookup_PropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewLookup(&stubSource{err: boom}).Resolve(context.Background(), []uuid.UUID{uuid.New()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}
