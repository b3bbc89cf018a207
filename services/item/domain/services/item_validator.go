// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/item/domain/models"
)

var faIconPattern = regexp.MustCompile(`^fa-[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateName enforces business rules for a Name beyond the length
// constraints enforced by models.NewName.
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc)
//   - No consecutive spaces
func ValidateName(name models.Name) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name must not be only whitespace")
	}

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}

	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return fmt.Errorf("name must not contain control characters")
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("name must not contain consecutive spaces")
	}

	return nil
}

// ValidateItem checks an Item before it is inserted or updated.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}
	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}
	if item.CategoryID == uuid.Nil {
		return fmt.Errorf("category_id must be set")
	}
	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	return nil
}

// ValidateFaIcon accepts Font Awesome icon class names such as "fa-carrot".
func ValidateFaIcon(icon string) error {
	if !faIconPattern.MatchString(icon) {
		return fmt.Errorf("fa_icon %q must look like fa-name", icon)
	}
	return nil
}

// ValidateItemCategory checks an ItemCategory before it is inserted or updated.
func ValidateItemCategory(c *models.ItemCategory) error {
	if c == nil {
		return fmt.Errorf("category cannot be nil")
	}
	if c.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}
	if err := ValidateName(c.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	return ValidateFaIcon(c.FaIcon)
}
