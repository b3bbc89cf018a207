package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/services/item/domain/models"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   models.Name
		wantErr bool
	}{
		{"valid name", "Plain Flour", false},
		{"valid name with special chars", "Crème-fraîche 30%", false},
		{"leading whitespace", " Flour", true},
		{"trailing whitespace", "Flour ", true},
		{"only whitespace", "   ", true},
		{"tab character (control)", "Plain\tFlour", true},
		{"newline character (control)", "Plain\nFlour", true},
		{"null byte (control)", "Flour\x00", true},
		{"DEL character", "Flour\x7F", true},
		{"consecutive spaces", "Plain  Flour", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	valid := func() *models.Item {
		return &models.Item{ID: uuid.New(), Name: "Flour", CategoryID: uuid.New()}
	}

	tests := []struct {
		name    string
		mutate  func(*models.Item) *models.Item
		wantErr bool
	}{
		{"valid item", func(i *models.Item) *models.Item { return i }, false},
		{"nil item", func(*models.Item) *models.Item { return nil }, true},
		{"zero ID", func(i *models.Item) *models.Item { i.ID = uuid.Nil; return i }, true},
		{"zero CategoryID", func(i *models.Item) *models.Item { i.CategoryID = uuid.Nil; return i }, true},
		{"invalid name", func(i *models.Item) *models.Item { i.Name = " Flour"; return i }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.mutate(valid()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFaIcon(t *testing.T) {
	tests := []struct {
		icon    string
		wantErr bool
	}{
		{"fa-carrot", false},
		{"fa-bottle-water", false},
		{"fa-1", false},
		{"carrot", true},
		{"fa-", true},
		{"fa-Carrot", true},
		{"fa-carrot ", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.icon, func(t *testing.T) {
			if err := ValidateFaIcon(tt.icon); (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFaIcon(%q) error = %v, wantErr = %v", tt.icon, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItemCategory(t *testing.T) {
	if err := ValidateItemCategory(&models.ItemCategory{ID: uuid.New(), Name: "Dairy", FaIcon: "fa-cheese"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateItemCategory(&models.ItemCategory{ID: uuid.New(), Name: "Dairy", FaIcon: "cheese"}); err == nil {
		t.Fatal("expected error for malformed icon")
	}
	if err := ValidateItemCategory(nil); err == nil {
		t.Fatal("expected error for nil category")
	}
}
