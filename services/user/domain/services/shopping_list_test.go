package services

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/user/domain"
	"github.com/ghuser/pantry/services/user/domain/models"
)

var (
	flour = uuid.MustParse("00000000-0000-0000-0000-00000000f10e")
	sugar = uuid.MustParse("00000000-0000-0000-0000-0000000005a6")
	eggs  = uuid.MustParse("00000000-0000-0000-0000-0000000000e6")

	recipeA = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	recipeB = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	recipeC = uuid.MustParse("cccccccc-0000-0000-0000-000000000003")
)

func line(item uuid.UUID, qty float64, unit string, obtained bool) models.ShoppingListLine {
	return models.ShoppingListLine{ItemID: item, Quantity: qty, Unit: unit, Obtained: obtained}
}

func assertLines(t *testing.T, got, want []models.ShoppingListLine) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestBuildFromMenu_Examples(t *testing.T) {
	tests := []struct {
		name     string
		menu     []models.MenuEntry
		resolved map[uuid.UUID][]models.Ingredient
		want     []models.ShoppingListLine
	}{
		{
			name: "single recipe scaled by serves",
			menu: []models.MenuEntry{{RecipeID: recipeA, Serves: 2}},
			resolved: map[uuid.UUID][]models.Ingredient{
				recipeA: {{ItemID: flour, Quantity: 100, Unit: "g"}},
			},
			want: []models.ShoppingListLine{line(flour, 200, "g", false)},
		},
		{
			name: "shared key summed across recipes",
			menu: []models.MenuEntry{{RecipeID: recipeA, Serves: 1}, {RecipeID: recipeB, Serves: 1}},
			resolved: map[uuid.UUID][]models.Ingredient{
				recipeA: {{ItemID: flour, Quantity: 100, Unit: "g"}},
				recipeB: {{ItemID: flour, Quantity: 50, Unit: "g"}},
			},
			want: []models.ShoppingListLine{line(flour, 150, "g", false)},
		},
		{
			name: "first insertion order kept",
			menu: []models.MenuEntry{{RecipeID: recipeA, Serves: 1}, {RecipeID: recipeB, Serves: 3}},
			resolved: map[uuid.UUID][]models.Ingredient{
				recipeA: {{ItemID: sugar, Quantity: 10, Unit: "g"}, {ItemID: flour, Quantity: 100, Unit: "g"}},
				recipeB: {{ItemID: eggs, Quantity: 2, Unit: "pcs"}, {ItemID: sugar, Quantity: 5, Unit: "g"}},
			},
			want: []models.ShoppingListLine{
				line(sugar, 25, "g", false),
				line(flour, 100, "g", false),
				line(eggs, 6, "pcs", false),
			},
		},
		{
			name: "different units never merge",
			menu: []models.MenuEntry{{RecipeID: recipeA, Serves: 1}},
			resolved: map[uuid.UUID][]models.Ingredient{
				recipeA: {{ItemID: flour, Quantity: 100, Unit: "g"}, {ItemID: flour, Quantity: 1, Unit: "cup"}},
			},
			want: []models.ShoppingListLine{line(flour, 100, "g", false), line(flour, 1, "cup", false)},
		},
		{
			name: "units compared case and space insensitive",
			menu: []models.MenuEntry{{RecipeID: recipeA, Serves: 1}, {RecipeID: recipeB, Serves: 1}},
			resolved: map[uuid.UUID][]models.Ingredient{
				recipeA: {{ItemID: flour, Quantity: 100, Unit: "G"}},
				recipeB: {{ItemID: flour, Quantity: 50, Unit: " g "}},
			},
			want: []models.ShoppingListLine{line(flour, 150, "g", false)},
		},
		{
			name:     "empty menu",
			menu:     nil,
			resolved: nil,
			want:     []models.ShoppingListLine{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, report, err := BuildFromMenu(tt.menu, tt.resolved)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertLines(t, got, tt.want)
			if len(report.Missing()) != 0 {
				t.Fatalf("expected no missing recipes, got %v", report.Missing())
			}
		})
	}
}

func TestBuildFromMenu_TombstoneTolerance(t *testing.T) {
	menu := []models.MenuEntry{
		{RecipeID: recipeA, Serves: 1},
		{RecipeID: recipeC, Serves: 4},
		{RecipeID: recipeB, Serves: 1},
	}
	resolved := map[uuid.UUID][]models.Ingredient{
		recipeA: {{ItemID: flour, Quantity: 100, Unit: "g"}},
		recipeB: {{ItemID: flour, Quantity: 50, Unit: "g"}},
	}

	got, report, err := BuildFromMenu(menu, resolved)
	if err != nil {
		t.Fatalf("a deleted recipe must not fail the build: %v", err)
	}
	assertLines(t, got, []models.ShoppingListLine{line(flour, 150, "g", false)})

	if len(report.Entries) != 3 {
		t.Fatalf("expected a result per entry, got %+v", report.Entries)
	}
	wantStatus := []EntryStatus{EntryResolved, EntryNotFound, EntryResolved}
	for i, s := range wantStatus {
		if report.Entries[i].Status != s {
			t.Fatalf("entry %d: expected %v, got %v", i, s, report.Entries[i].Status)
		}
	}
	missing := report.Missing()
	if len(missing) != 1 || missing[0] != recipeC {
		t.Fatalf("expected missing [%v], got %v", recipeC, missing)
	}
}

func TestBuildFromMenu_ServesOneEqualsRawSums(t *testing.T) {
	resolved := map[uuid.UUID][]models.Ingredient{
		recipeA: {{ItemID: flour, Quantity: 120, Unit: "g"}, {ItemID: eggs, Quantity: 2, Unit: "pcs"}},
		recipeB: {{ItemID: flour, Quantity: 30, Unit: "g"}},
		recipeC: {{ItemID: eggs, Quantity: 1, Unit: "pcs"}, {ItemID: sugar, Quantity: 5, Unit: "tbsp"}},
	}
	menu := []models.MenuEntry{{RecipeID: recipeA, Serves: 1}, {RecipeID: recipeB, Serves: 1}, {RecipeID: recipeC, Serves: 1}}

	got, _, err := BuildFromMenu(menu, resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw := map[models.LineKey]float64{}
	for _, ings := range resolved {
		for _, ing := range ings {
			raw[KeyOf(ing.ItemID, ing.Unit)] += ing.Quantity
		}
	}
	if len(got) != len(raw) {
		t.Fatalf("expected %d lines, got %d", len(raw), len(got))
	}
	for _, l := range got {
		if l.Quantity != raw[l.Key()] {
			t.Fatalf("%v: expected %v, got %v", l.Key(), raw[l.Key()], l.Quantity)
		}
	}
}

func TestBuildFromMenu_Linearity(t *testing.T) {
	resolved := map[uuid.UUID][]models.Ingredient{
		recipeA: {{ItemID: flour, Quantity: 0.25, Unit: "kg"}, {ItemID: eggs, Quantity: 3, Unit: "pcs"}},
		recipeB: {{ItemID: flour, Quantity: 0.1, Unit: "kg"}, {ItemID: sugar, Quantity: 7.5, Unit: "g"}},
	}
	menu := []models.MenuEntry{{RecipeID: recipeA, Serves: 3}, {RecipeID: recipeB, Serves: 5}}
	doubled := []models.MenuEntry{{RecipeID: recipeA, Serves: 6}, {RecipeID: recipeB, Serves: 10}}

	base, _, err := BuildFromMenu(menu, resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled, _, err := BuildFromMenu(doubled, resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(base) != len(scaled) {
		t.Fatalf("line count changed: %d vs %d", len(base), len(scaled))
	}
	for i := range base {
		if base[i].Key() != scaled[i].Key() {
			t.Fatalf("line %d key changed", i)
		}
		if math.Abs(scaled[i].Quantity-2*base[i].Quantity) > 1e-9 {
			t.Fatalf("line %d: expected %v, got %v", i, 2*base[i].Quantity, scaled[i].Quantity)
		}
	}
}

func TestBuildFromMenu_HardFailures(t *testing.T) {
	ok := map[uuid.UUID][]models.Ingredient{recipeA: {{ItemID: flour, Quantity: 1, Unit: "g"}}}

	tests := []struct {
		name     string
		menu     []models.MenuEntry
		resolved map[uuid.UUID][]models.Ingredient
		want     error
	}{
		{"zero serves", []models.MenuEntry{{RecipeID: recipeA, Serves: 0}}, ok, domain.ErrInvalidMenu},
		{"negative serves", []models.MenuEntry{{RecipeID: recipeA, Serves: -1}}, ok, domain.ErrInvalidMenu},
		{"nil recipe id", []models.MenuEntry{{Serves: 1}}, ok, domain.ErrInvalidMenu},
		{"duplicate recipe", []models.MenuEntry{{RecipeID: recipeA, Serves: 1}, {RecipeID: recipeA, Serves: 2}}, ok, domain.ErrInvalidMenu},
		{"zero quantity", []models.MenuEntry{{RecipeID: recipeA, Serves: 1}},
			map[uuid.UUID][]models.Ingredient{recipeA: {{ItemID: flour, Quantity: 0, Unit: "g"}}}, domain.ErrInvalidQuantity},
		{"NaN quantity", []models.MenuEntry{{RecipeID: recipeA, Serves: 1}},
			map[uuid.UUID][]models.Ingredient{recipeA: {{ItemID: flour, Quantity: math.NaN(), Unit: "g"}}}, domain.ErrInvalidQuantity},
		{"infinite quantity", []models.MenuEntry{{RecipeID: recipeA, Serves: 1}},
			map[uuid.UUID][]models.Ingredient{recipeA: {{ItemID: flour, Quantity: math.Inf(1), Unit: "g"}}}, domain.ErrInvalidQuantity},
		{"serves above limit", []models.MenuEntry{{RecipeID: recipeA, Serves: MaxServes + 1}}, ok, domain.ErrInvalidMenu},
		{"quantity above limit", []models.MenuEntry{{RecipeID: recipeA, Serves: 1}},
			map[uuid.UUID][]models.Ingredient{recipeA: {{ItemID: flour, Quantity: 1e306, Unit: "g"}}}, domain.ErrInvalidQuantity},
		{"blank unit", []models.MenuEntry{{RecipeID: recipeA, Serves: 1}},
			map[uuid.UUID][]models.Ingredient{recipeA: {{ItemID: flour, Quantity: 1, Unit: "  "}}}, domain.ErrInvalidUnit},
		{"nil item", []models.MenuEntry{{RecipeID: recipeA, Serves: 1}},
			map[uuid.UUID][]models.Ingredient{recipeA: {{Quantity: 1, Unit: "g"}}}, domain.ErrMissingItemID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, report, err := BuildFromMenu(tt.menu, tt.resolved)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if got != nil || report.Entries != nil {
				t.Fatalf("expected no partial result, got %+v %+v", got, report)
			}
		})
	}
}

func TestMergeExtras_Example(t *testing.T) {
	base := []models.ShoppingListLine{line(flour, 150, "g", false)}
	extras := []models.ExtraItem{{ItemID: flour, Quantity: 50, Unit: "g", Obtained: true}}

	got := MergeExtras(base, extras)
	assertLines(t, got, []models.ShoppingListLine{line(flour, 200, "g", false)})
}

func TestMergeExtras(t *testing.T) {
	tests := []struct {
		name   string
		base   []models.ShoppingListLine
		extras []models.ExtraItem
		want   []models.ShoppingListLine
	}{
		{
			name:   "obtained derived line stays obtained",
			base:   []models.ShoppingListLine{line(flour, 100, "g", true)},
			extras: []models.ExtraItem{{ItemID: flour, Quantity: 50, Unit: "g"}},
			want:   []models.ShoppingListLine{line(flour, 150, "g", true)},
		},
		{
			name:   "unmatched extra appended with own obtained",
			base:   []models.ShoppingListLine{line(flour, 100, "g", false)},
			extras: []models.ExtraItem{{ItemID: eggs, Quantity: 6, Unit: "pcs", Obtained: true}},
			want:   []models.ShoppingListLine{line(flour, 100, "g", false), line(eggs, 6, "pcs", true)},
		},
		{
			name:   "same item other unit appended",
			base:   []models.ShoppingListLine{line(flour, 100, "g", false)},
			extras: []models.ExtraItem{{ItemID: flour, Quantity: 1, Unit: "kg"}},
			want:   []models.ShoppingListLine{line(flour, 100, "g", false), line(flour, 1, "kg", false)},
		},
		{
			name:   "no extras",
			base:   []models.ShoppingListLine{line(flour, 100, "g", false)},
			extras: nil,
			want:   []models.ShoppingListLine{line(flour, 100, "g", false)},
		},
		{
			name:   "empty base",
			base:   nil,
			extras: []models.ExtraItem{{ItemID: sugar, Quantity: 1, Unit: "Kg"}},
			want:   []models.ShoppingListLine{line(sugar, 1, "kg", false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLines(t, MergeExtras(tt.base, tt.extras), tt.want)
		})
	}
}

func TestMergeExtras_DoesNotMutateInputs(t *testing.T) {
	base := []models.ShoppingListLine{line(flour, 100, "g", false)}
	extras := []models.ExtraItem{{ItemID: flour, Quantity: 50, Unit: "g"}}

	_ = MergeExtras(base, extras)
	if base[0].Quantity != 100 {
		t.Fatalf("base mutated: %+v", base[0])
	}
}

func TestMergeExtras_OrderIndependent(t *testing.T) {
	base := []models.ShoppingListLine{line(flour, 100, "g", false), line(eggs, 2, "pcs", true)}
	extras := []models.ExtraItem{
		{ItemID: flour, Quantity: 50, Unit: "g", Obtained: true},
		{ItemID: sugar, Quantity: 1, Unit: "kg"},
		{ItemID: eggs, Quantity: 4, Unit: "pcs"},
		{ItemID: flour, Quantity: 1, Unit: "kg", Obtained: true},
	}
	reversed := make([]models.ExtraItem, len(extras))
	for i, x := range extras {
		reversed[len(extras)-1-i] = x
	}

	a := sortedLines(MergeExtras(base, extras))
	b := sortedLines(MergeExtras(base, reversed))
	assertLines(t, a, b)
}

func sortedLines(lines []models.ShoppingListLine) []models.ShoppingListLine {
	out := append([]models.ShoppingListLine(nil), lines...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID.String() < out[j].ItemID.String()
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

func TestToggleObtained(t *testing.T) {
	lines := []models.ShoppingListLine{line(flour, 100, "g", false), line(flour, 1, "kg", false)}

	once, err := ToggleObtained(lines, flour, "KG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLines(t, once, []models.ShoppingListLine{line(flour, 100, "g", false), line(flour, 1, "kg", true)})
	if lines[1].Obtained {
		t.Fatal("input must not be modified")
	}

	twice, err := ToggleObtained(once, flour, "kg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLines(t, twice, lines)
}

func TestToggleObtained_NotFound(t *testing.T) {
	lines := []models.ShoppingListLine{line(flour, 100, "g", false)}

	if _, err := ToggleObtained(lines, flour, "cup"); !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
	if _, err := ToggleObtained(lines, eggs, "g"); !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestRecompute_CarriesObtainedAndFoldsRegulars(t *testing.T) {
	previous := []models.ShoppingListLine{line(flour, 100, "g", true), line(sugar, 5, "g", true)}
	menu := []models.MenuEntry{{RecipeID: recipeA, Serves: 2}}
	resolved := map[uuid.UUID][]models.Ingredient{
		recipeA: {{ItemID: flour, Quantity: 100, Unit: "g"}, {ItemID: eggs, Quantity: 1, Unit: "pcs"}},
	}
	regulars := []models.RegularItem{{ItemID: eggs, Quantity: 6, Unit: "pcs"}, {ItemID: sugar, Quantity: 1, Unit: "kg"}}

	got, report, err := Recompute(menu, resolved, regulars, previous)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLines(t, got, []models.ShoppingListLine{
		line(flour, 200, "g", true),
		line(eggs, 8, "pcs", false),
		line(sugar, 1, "kg", false),
	})
	if len(report.Entries) != 1 || report.Entries[0].Status != EntryResolved {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRecompute_InvalidRegular(t *testing.T) {
	_, _, err := Recompute(nil, nil, []models.RegularItem{{ItemID: eggs, Quantity: -1, Unit: "pcs"}}, nil)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestNormalizeExtras(t *testing.T) {
	got, err := NormalizeExtras([]models.ExtraItem{
		{ItemID: flour, Quantity: 50, Unit: "G", Obtained: true},
		{ItemID: eggs, Quantity: 2, Unit: "pcs"},
		{ItemID: flour, Quantity: 25, Unit: "g"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.ExtraItem{
		{ItemID: flour, Quantity: 75, Unit: "g", Obtained: true},
		{ItemID: eggs, Quantity: 2, Unit: "pcs"},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if _, err := NormalizeExtras([]models.ExtraItem{{ItemID: flour, Quantity: 0, Unit: "g"}}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestNormalizeRegulars(t *testing.T) {
	got, err := NormalizeRegulars([]models.RegularItem{
		{ItemID: eggs, Quantity: 6, Unit: "pcs"},
		{ItemID: eggs, Quantity: 6, Unit: "PCS"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Quantity != 12 || got[0].Unit != "pcs" {
		t.Fatalf("expected one 12 pcs line, got %+v", got)
	}

	if _, err := NormalizeRegulars([]models.RegularItem{{Quantity: 1, Unit: "g"}}); !errors.Is(err, domain.ErrMissingItemID) {
		t.Fatalf("expected ErrMissingItemID, got %v", err)
	}
}

func TestToggleUserLine(t *testing.T) {
	derived := []models.ShoppingListLine{line(flour, 100, "g", false)}
	extras := []models.ExtraItem{
		{ItemID: flour, Quantity: 50, Unit: "g"},
		{ItemID: eggs, Quantity: 6, Unit: "pcs"},
	}

	t.Run("key on derived flips derived", func(t *testing.T) {
		d, x, err := ToggleUserLine(derived, extras, flour, "g")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !d[0].Obtained || x[0].Obtained {
			t.Fatalf("expected derived flipped only, got %+v %+v", d, x)
		}
		merged := MergeExtras(d, x)
		if !merged[0].Obtained || merged[0].Quantity != 150 {
			t.Fatalf("merged line should show obtained 150 g, got %+v", merged[0])
		}
	})

	t.Run("extra only key flips extra", func(t *testing.T) {
		d, x, err := ToggleUserLine(derived, extras, eggs, "pcs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d[0].Obtained || !x[1].Obtained {
			t.Fatalf("expected extra flipped only, got %+v %+v", d, x)
		}
		if extras[1].Obtained {
			t.Fatal("input extras must not be modified")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, _, err := ToggleUserLine(derived, extras, sugar, "g"); !errors.Is(err, domain.ErrLineNotFound) {
			t.Fatalf("expected ErrLineNotFound, got %v", err)
		}
	})
}

func TestRemoveItem(t *testing.T) {
	u := &models.User{
		ShoppingList: []models.ShoppingListLine{line(flour, 100, "g", false), line(eggs, 2, "pcs", false)},
		ExtraItems:   []models.ExtraItem{{ItemID: flour, Quantity: 1, Unit: "kg"}},
		RegularItems: []models.RegularItem{{ItemID: sugar, Quantity: 1, Unit: "kg"}},
	}

	if !RemoveItem(u, flour) {
		t.Fatal("expected change")
	}
	if len(u.ShoppingList) != 1 || u.ShoppingList[0].ItemID != eggs || len(u.ExtraItems) != 0 || len(u.RegularItems) != 1 {
		t.Fatalf("unexpected user after prune: %+v", u)
	}
	if RemoveItem(u, flour) {
		t.Fatal("second removal must report no change")
	}
}

func TestRemoveRecipe(t *testing.T) {
	u := &models.User{
		FavouriteRecipes: []uuid.UUID{recipeA, recipeB},
		RecipeMenu:       []models.MenuEntry{{RecipeID: recipeA, Serves: 2}, {RecipeID: recipeC, Serves: 1}},
	}

	if !RemoveRecipe(u, recipeA) {
		t.Fatal("expected change")
	}
	if len(u.FavouriteRecipes) != 1 || u.FavouriteRecipes[0] != recipeB {
		t.Fatalf("unexpected favourites %v", u.FavouriteRecipes)
	}
	if len(u.RecipeMenu) != 1 || u.RecipeMenu[0].RecipeID != recipeC {
		t.Fatalf("unexpected menu %v", u.RecipeMenu)
	}
	if RemoveRecipe(u, uuid.New()) {
		t.Fatal("unknown recipe must report no change")
	}
}

func TestBuildFromMenu_LineTotalCapped(t *testing.T) {
	menu := make([]models.MenuEntry, 0, 1001)
	resolved := make(map[uuid.UUID][]models.Ingredient, 1001)
	for range 1001 {
		id := uuid.New()
		menu = append(menu, models.MenuEntry{RecipeID: id, Serves: MaxServes})
		resolved[id] = []models.Ingredient{{ItemID: flour, Quantity: MaxQuantity, Unit: "g"}}
	}

	got, _, err := BuildFromMenu(menu, resolved)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %d lines", len(got))
	}

	got, _, err = BuildFromMenu(menu[:1000], resolved)
	if err != nil {
		t.Fatalf("unexpected error at the cap: %v", err)
	}
	if got[0].Quantity != MaxLineQuantity {
		t.Fatalf("expected %v, got %v", float64(MaxLineQuantity), got[0].Quantity)
	}
}

func TestAccumulatorAdd_RejectsOutOfRangeTotals(t *testing.T) {
	tests := []struct {
		name  string
		first float64
		then  float64
	}{
		{"sum past cap", MaxLineQuantity, 1},
		{"sum overflows", math.MaxFloat64, math.MaxFloat64},
		{"infinite line", math.Inf(1), 0},
		{"NaN line", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newAccumulator(1)
			err := acc.add(line(flour, tt.first, "g", false))
			if err == nil {
				err = acc.add(line(flour, tt.then, "g", false))
			}
			if !errors.Is(err, domain.ErrInvalidQuantity) {
				t.Fatalf("expected ErrInvalidQuantity, got %v", err)
			}
			for _, l := range acc.lines {
				if l.Quantity > MaxLineQuantity || math.IsInf(l.Quantity, 0) {
					t.Fatalf("accumulator kept out-of-range line %+v", l)
				}
			}
		})
	}
}

func TestQuantityLimits_UserInput(t *testing.T) {
	huge := []models.ExtraItem{
		{ItemID: flour, Quantity: 1e308, Unit: "g"},
		{ItemID: flour, Quantity: 1e308, Unit: "g"},
	}
	if _, err := NormalizeExtras(huge); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("extras: expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := NormalizeRegulars([]models.RegularItem{{ItemID: flour, Quantity: MaxQuantity + 1, Unit: "g"}}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("regulars: expected ErrInvalidQuantity, got %v", err)
	}

	atLimit, err := NormalizeExtras([]models.ExtraItem{{ItemID: flour, Quantity: MaxQuantity, Unit: "g"}})
	if err != nil || atLimit[0].Quantity != MaxQuantity {
		t.Fatalf("limit itself must be accepted: %+v, %v", atLimit, err)
	}
}

func TestMergeExtras_StoredMaximaStayEncodable(t *testing.T) {
	base := []models.ShoppingListLine{line(flour, MaxLineQuantity, "g", false)}
	extras := []models.ExtraItem{{ItemID: flour, Quantity: MaxLineQuantity, Unit: "g"}}

	merged := MergeExtras(base, extras)
	if merged[0].Quantity != 2*MaxLineQuantity {
		t.Fatalf("expected %v, got %v", 2*MaxLineQuantity, merged[0].Quantity)
	}
	if _, err := json.Marshal(merged); err != nil {
		t.Fatalf("merged list must encode: %v", err)
	}
}
