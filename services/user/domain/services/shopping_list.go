// Package services contains the stateless shopping-list domain services:
// building the derived list from a recipe menu, merging extra items onto it
// and toggling obtained state. Everything here is pure and operates on data
// the caller has already loaded.
package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/user/domain"
	"github.com/ghuser/pantry/services/user/domain/models"
)

// EntryStatus is the outcome of resolving one menu entry.
type EntryStatus int

const (
	// EntryResolved means the recipe was found and its ingredients were added.
	EntryResolved EntryStatus = iota
	// EntryNotFound means the recipe no longer exists; the entry was skipped.
	EntryNotFound
)

func (s EntryStatus) String() string {
	switch s {
	case EntryResolved:
		return "resolved"
	case EntryNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("EntryStatus(%d)", int(s))
	}
}

// EntryResult records what happened to one menu entry during a build.
type EntryResult struct {
	RecipeID uuid.UUID
	Serves   int
	Status   EntryStatus
}

// BuildReport lists every menu entry in input order with its outcome.
type BuildReport struct {
	Entries []EntryResult
}

// Missing returns the recipe ids that could not be resolved, in menu order.
func (r BuildReport) Missing() []uuid.UUID {
	var ids []uuid.UUID
	for _, e := range r.Entries {
		if e.Status == EntryNotFound {
			ids = append(ids, e.RecipeID)
		}
	}
	return ids
}

const (
	// MaxQuantity bounds a single entered quantity (ingredient, extra or regular item).
	MaxQuantity = 1_000_000
	// MaxServes bounds a menu entry's serves.
	MaxServes = 1_000
	// MaxLineQuantity bounds a stored line after scaling and summing. Two
	// stored lines can always be merged without leaving float64 range.
	MaxLineQuantity = 1e12
)

// NormalizeUnit trims and lower-cases a unit so "G" and " g" share a key.
// No conversion between units is attempted.
func NormalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// KeyOf returns the line key for an item and a raw unit.
func KeyOf(itemID uuid.UUID, unit string) models.LineKey {
	return models.LineKey{ItemID: itemID, Unit: NormalizeUnit(unit)}
}

// ValidateQuantity checks one (item, quantity, unit) triple.
func ValidateQuantity(itemID uuid.UUID, quantity float64, unit string) error {
	if itemID == uuid.Nil {
		return domain.ErrMissingItemID
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuantity, quantity)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: %v exceeds %d", domain.ErrInvalidQuantity, quantity, MaxQuantity)
	}
	if NormalizeUnit(unit) == "" {
		return domain.ErrInvalidUnit
	}
	return nil
}

// ValidateMenu checks every entry has a recipe id and a serves in
// 1..MaxServes and that no recipe appears twice.
func ValidateMenu(menu []models.MenuEntry) error {
	seen := make(map[uuid.UUID]struct{}, len(menu))
	for i, e := range menu {
		if e.RecipeID == uuid.Nil {
			return fmt.Errorf("%w: entry %d has no recipe id", domain.ErrInvalidMenu, i)
		}
		if e.Serves <= 0 || e.Serves > MaxServes {
			return fmt.Errorf("%w: entry %d serves must be in 1..%d, got %d", domain.ErrInvalidMenu, i, MaxServes, e.Serves)
		}
		if _, dup := seen[e.RecipeID]; dup {
			return fmt.Errorf("%w: recipe %s listed more than once", domain.ErrInvalidMenu, e.RecipeID)
		}
		seen[e.RecipeID] = struct{}{}
	}
	return nil
}

// checkLine rejects a scaled or summed quantity outside (0, MaxLineQuantity].
// NaN and infinities fail the comparison.
func checkLine(itemID uuid.UUID, unit string, quantity float64) error {
	if !(quantity > 0 && quantity <= MaxLineQuantity) {
		return fmt.Errorf("%w: %s %s totals %v", domain.ErrInvalidQuantity, itemID, unit, quantity)
	}
	return nil
}

// accumulator is an insertion-ordered map from LineKey to line.
type accumulator struct {
	index map[models.LineKey]int
	lines []models.ShoppingListLine
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{
		index: make(map[models.LineKey]int, capacity),
		lines: make([]models.ShoppingListLine, 0, capacity),
	}
}

// add sums quantity into an existing line, keeping that line's obtained flag,
// or appends line as a new entry. line.Unit must be normalized.
func (a *accumulator) add(line models.ShoppingListLine) error {
	key := line.Key()
	if i, ok := a.index[key]; ok {
		sum := a.lines[i].Quantity + line.Quantity
		if err := checkLine(line.ItemID, line.Unit, sum); err != nil {
			return err
		}
		a.lines[i].Quantity = sum
		return nil
	}
	if err := checkLine(line.ItemID, line.Unit, line.Quantity); err != nil {
		return err
	}
	a.index[key] = len(a.lines)
	a.lines = append(a.lines, line)
	return nil
}

func (a *accumulator) addIngredients(ingredients []models.Ingredient, serves int) error {
	for _, ing := range ingredients {
		if err := ValidateQuantity(ing.ItemID, ing.Quantity, ing.Unit); err != nil {
			return err
		}
	}
	for _, ing := range ingredients {
		err := a.add(models.ShoppingListLine{
			ItemID:   ing.ItemID,
			Quantity: ing.Quantity * float64(serves),
			Unit:     NormalizeUnit(ing.Unit),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *accumulator) addMenu(menu []models.MenuEntry, resolved map[uuid.UUID][]models.Ingredient) (BuildReport, error) {
	if err := ValidateMenu(menu); err != nil {
		return BuildReport{}, err
	}

	report := BuildReport{Entries: make([]EntryResult, 0, len(menu))}
	for _, e := range menu {
		ingredients, ok := resolved[e.RecipeID]
		if !ok {
			report.Entries = append(report.Entries, EntryResult{RecipeID: e.RecipeID, Serves: e.Serves, Status: EntryNotFound})
			continue
		}
		if err := a.addIngredients(ingredients, e.Serves); err != nil {
			return BuildReport{}, fmt.Errorf("recipe %s: %w", e.RecipeID, err)
		}
		report.Entries = append(report.Entries, EntryResult{RecipeID: e.RecipeID, Serves: e.Serves, Status: EntryResolved})
	}
	return report, nil
}

// BuildFromMenu scales every resolved recipe's ingredients by the entry's
// serves and sums them per (item_id, unit) in first-seen order. Every line
// starts with Obtained=false.
//
// resolved maps recipe ids to ingredients; an id absent from it is a deleted
// recipe. Such entries are skipped and reported as EntryNotFound. Invalid
// menu entries or ingredients fail the whole build with no partial result.
func BuildFromMenu(menu []models.MenuEntry, resolved map[uuid.UUID][]models.Ingredient) ([]models.ShoppingListLine, BuildReport, error) {
	acc := newAccumulator(len(menu) * 4)
	report, err := acc.addMenu(menu, resolved)
	if err != nil {
		return nil, BuildReport{}, err
	}
	return acc.lines, report, nil
}

// MergeExtras returns base with extras folded in. An extra whose key matches
// an existing line adds to its quantity and leaves that line's Obtained
// untouched; any other extra is appended with its own Obtained.
//
// Neither input is modified. Callers must always pass the stored derived
// snapshot and the full extras set, never a previous MergeExtras result.
// Both are unique by key and capped at MaxLineQuantity when stored, so a
// merged line is at most twice that and stays finite.
func MergeExtras(base []models.ShoppingListLine, extras []models.ExtraItem) []models.ShoppingListLine {
	out := make([]models.ShoppingListLine, 0, len(base)+len(extras))
	index := make(map[models.LineKey]int, len(base)+len(extras))
	merge := func(l models.ShoppingListLine) {
		l.Unit = NormalizeUnit(l.Unit)
		if i, ok := index[l.Key()]; ok {
			out[i].Quantity += l.Quantity
			return
		}
		index[l.Key()] = len(out)
		out = append(out, l)
	}
	for _, l := range base {
		merge(l)
	}
	for _, x := range extras {
		merge(models.ShoppingListLine{ItemID: x.ItemID, Quantity: x.Quantity, Unit: x.Unit, Obtained: x.Obtained})
	}
	return out
}

// ToggleObtained returns a copy of lines with Obtained flipped on the line
// matching (itemID, unit). Quantities are untouched.
func ToggleObtained(lines []models.ShoppingListLine, itemID uuid.UUID, unit string) ([]models.ShoppingListLine, error) {
	key := KeyOf(itemID, unit)
	out := make([]models.ShoppingListLine, len(lines))
	copy(out, lines)
	for i := range out {
		if KeyOf(out[i].ItemID, out[i].Unit) == key {
			out[i].Obtained = !out[i].Obtained
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", domain.ErrLineNotFound, itemID, key.Unit)
}

// CarryObtained copies Obtained from previous onto fresh for every key that
// survives a rebuild. Lines new to fresh keep Obtained=false.
func CarryObtained(fresh, previous []models.ShoppingListLine) []models.ShoppingListLine {
	if len(previous) == 0 {
		return fresh
	}
	obtained := make(map[models.LineKey]bool, len(previous))
	for _, l := range previous {
		obtained[KeyOf(l.ItemID, l.Unit)] = l.Obtained
	}
	out := make([]models.ShoppingListLine, len(fresh))
	for i, l := range fresh {
		l.Obtained = obtained[l.Key()]
		out[i] = l
	}
	return out
}

// Recompute rebuilds the derived snapshot: the menu is built first, regular
// items are added as a single-serving recipe, then obtained state is carried
// over from previous.
func Recompute(menu []models.MenuEntry, resolved map[uuid.UUID][]models.Ingredient, regulars []models.RegularItem, previous []models.ShoppingListLine) ([]models.ShoppingListLine, BuildReport, error) {
	acc := newAccumulator(len(menu)*4 + len(regulars))
	report, err := acc.addMenu(menu, resolved)
	if err != nil {
		return nil, BuildReport{}, err
	}

	regular := make([]models.Ingredient, len(regulars))
	for i, r := range regulars {
		regular[i] = models.Ingredient(r)
	}
	if err := acc.addIngredients(regular, 1); err != nil {
		return nil, BuildReport{}, fmt.Errorf("regular items: %w", err)
	}

	return CarryObtained(acc.lines, previous), report, nil
}

// NormalizeExtras validates extras, normalizes their units and sums entries
// sharing a key so the stored set is unique by (item_id, unit). The first
// occurrence's Obtained wins.
func NormalizeExtras(extras []models.ExtraItem) ([]models.ExtraItem, error) {
	out := make([]models.ExtraItem, 0, len(extras))
	index := make(map[models.LineKey]int, len(extras))
	for i, x := range extras {
		if err := ValidateQuantity(x.ItemID, x.Quantity, x.Unit); err != nil {
			return nil, fmt.Errorf("extra item %d: %w", i, err)
		}
		x.Unit = NormalizeUnit(x.Unit)
		key := models.LineKey{ItemID: x.ItemID, Unit: x.Unit}
		if j, ok := index[key]; ok {
			sum := out[j].Quantity + x.Quantity
			if err := checkLine(key.ItemID, key.Unit, sum); err != nil {
				return nil, fmt.Errorf("extra item %d: %w", i, err)
			}
			out[j].Quantity = sum
			continue
		}
		index[key] = len(out)
		out = append(out, x)
	}
	return out, nil
}

// NormalizeRegulars is NormalizeExtras for regular items.
func NormalizeRegulars(regulars []models.RegularItem) ([]models.RegularItem, error) {
	out := make([]models.RegularItem, 0, len(regulars))
	index := make(map[models.LineKey]int, len(regulars))
	for i, r := range regulars {
		if err := ValidateQuantity(r.ItemID, r.Quantity, r.Unit); err != nil {
			return nil, fmt.Errorf("regular item %d: %w", i, err)
		}
		r.Unit = NormalizeUnit(r.Unit)
		key := models.LineKey{ItemID: r.ItemID, Unit: r.Unit}
		if j, ok := index[key]; ok {
			sum := out[j].Quantity + r.Quantity
			if err := checkLine(key.ItemID, key.Unit, sum); err != nil {
				return nil, fmt.Errorf("regular item %d: %w", i, err)
			}
			out[j].Quantity = sum
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out, nil
}

// ToggleUserLine flips obtained for a key on a user's list. The derived line
// owns the state when the key exists there, since MergeExtras shows the
// derived line's Obtained; otherwise the matching extra item is flipped.
func ToggleUserLine(derived []models.ShoppingListLine, extras []models.ExtraItem, itemID uuid.UUID, unit string) ([]models.ShoppingListLine, []models.ExtraItem, error) {
	if toggled, err := ToggleObtained(derived, itemID, unit); err == nil {
		return toggled, extras, nil
	}

	key := KeyOf(itemID, unit)
	out := make([]models.ExtraItem, len(extras))
	copy(out, extras)
	for i := range out {
		if KeyOf(out[i].ItemID, out[i].Unit) == key {
			out[i].Obtained = !out[i].Obtained
			return derived, out, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s %s", domain.ErrLineNotFound, itemID, key.Unit)
}

// RemoveItem drops every line, extra and regular entry for itemID.
func RemoveItem(u *models.User, itemID uuid.UUID) bool {
	changed := false

	lines := make([]models.ShoppingListLine, 0, len(u.ShoppingList))
	for _, l := range u.ShoppingList {
		if l.ItemID == itemID {
			changed = true
			continue
		}
		lines = append(lines, l)
	}

	extras := make([]models.ExtraItem, 0, len(u.ExtraItems))
	for _, x := range u.ExtraItems {
		if x.ItemID == itemID {
			changed = true
			continue
		}
		extras = append(extras, x)
	}

	regulars := make([]models.RegularItem, 0, len(u.RegularItems))
	for _, r := range u.RegularItems {
		if r.ItemID == itemID {
			changed = true
			continue
		}
		regulars = append(regulars, r)
	}

	u.ShoppingList, u.ExtraItems, u.RegularItems = lines, extras, regulars
	return changed
}

// RemoveRecipe drops recipeID from the user's favourites and menu.
func RemoveRecipe(u *models.User, recipeID uuid.UUID) bool {
	changed := false

	favs := make([]uuid.UUID, 0, len(u.FavouriteRecipes))
	for _, id := range u.FavouriteRecipes {
		if id == recipeID {
			changed = true
			continue
		}
		favs = append(favs, id)
	}

	menu := make([]models.MenuEntry, 0, len(u.RecipeMenu))
	for _, e := range u.RecipeMenu {
		if e.RecipeID == recipeID {
			changed = true
			continue
		}
		menu = append(menu, e)
	}

	u.FavouriteRecipes, u.RecipeMenu = favs, menu
	return changed
}
