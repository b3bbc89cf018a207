package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/database"
	itemdomain "github.com/ghuser/pantry/services/item/domain"
	"github.com/ghuser/pantry/services/item/domain/models"
)

// ItemCategoryRepository implements repositories.ItemCategoryRepository.
type ItemCategoryRepository struct {
	db *database.Database
}

// NewItemCategoryRepository returns an ItemCategoryRepository on the given pool.
func NewItemCategoryRepository(database *database.Database) *ItemCategoryRepository {
	return &ItemCategoryRepository{db: database}
}

// Save inserts a category. Returns ErrItemCategoryAlreadyExists on a duplicate name or icon.
func (r *ItemCategoryRepository) Save(ctx context.Context, c *models.ItemCategory) error {
	_, err := r.db.DB().ExecContext(ctx,
		`INSERT INTO item_categories (id, name, fa_icon, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name.String(), c.FaIcon, c.CreatedAt,
	)
	return translateCategoryErr(err)
}

// GetByID returns ErrItemCategoryNotFound if the category does not exist.
func (r *ItemCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ItemCategory, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT id, name, fa_icon, created_at FROM item_categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, itemdomain.ErrItemCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item category: %w", err)
	}
	return c, nil
}

// List returns all categories ordered by name.
func (r *ItemCategoryRepository) List(ctx context.Context) ([]*models.ItemCategory, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT id, name, fa_icon, created_at FROM item_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query item categories: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*models.ItemCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update renames a category or changes its icon.
func (r *ItemCategoryRepository) Update(ctx context.Context, c *models.ItemCategory) error {
	res, err := r.db.DB().ExecContext(ctx,
		`UPDATE item_categories SET name = $2, fa_icon = $3 WHERE id = $1`,
		c.ID, c.Name.String(), c.FaIcon,
	)
	if err != nil {
		return translateCategoryErr(err)
	}
	return requireAffected(res, itemdomain.ErrItemCategoryNotFound)
}

func scanCategory(s rowScanner) (*models.ItemCategory, error) {
	var (
		c    models.ItemCategory
		name string
	)
	if err := s.Scan(&c.ID, &name, &c.FaIcon, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Name = models.Name(name)
	return &c, nil
}

func translateCategoryErr(err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err):
		return itemdomain.ErrItemCategoryAlreadyExists
	default:
		return fmt.Errorf("write item category: %w", err)
	}
}
