package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/database"
	recipedomain "github.com/ghuser/pantry/services/recipe/domain"
	"github.com/ghuser/pantry/services/recipe/domain/models"
)

// RecipeCategoryRepository implements repositories.RecipeCategoryRepository.
type RecipeCategoryRepository struct {
	db *database.Database
}

// NewRecipeCategoryRepository returns a RecipeCategoryRepository.
func NewRecipeCategoryRepository(db *database.Database) *RecipeCategoryRepository {
	return &RecipeCategoryRepository{db: db}
}

// Save inserts a category. Returns ErrRecipeCategoryAlreadyExists on a duplicate name.
func (r *RecipeCategoryRepository) Save(ctx context.Context, c *models.RecipeCategory) error {
	_, err := r.db.DB().ExecContext(ctx,
		`INSERT INTO recipe_categories (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt)
	if err != nil {
		return translateCategoryErr(err)
	}
	return nil
}

func (r *RecipeCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RecipeCategory, error) {
	var c models.RecipeCategory
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT id, name, created_at FROM recipe_categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recipedomain.ErrRecipeCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe category: %w", err)
	}
	return &c, nil
}

// GetByIDs returns the categories that exist among ids, ordered by name.
func (r *RecipeCategoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.RecipeCategory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx,
		`SELECT id, name, created_at FROM recipe_categories WHERE id = ANY($1::uuid[]) ORDER BY name`,
		uuidStrings(ids))
}

func (r *RecipeCategoryRepository) List(ctx context.Context) ([]*models.RecipeCategory, error) {
	return r.query(ctx, `SELECT id, name, created_at FROM recipe_categories ORDER BY name`)
}

func (r *RecipeCategoryRepository) Update(ctx context.Context, c *models.RecipeCategory) error {
	res, err := r.db.DB().ExecContext(ctx,
		`UPDATE recipe_categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return translateCategoryErr(err)
	}
	return requireAffected(res, recipedomain.ErrRecipeCategoryNotFound)
}

// Delete removes the category and its id from every recipe in one transaction.
func (r *RecipeCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE recipes SET category_ids = category_ids - $1::text
			  WHERE category_ids ? $1::text`, id.String())
		if err != nil {
			return fmt.Errorf("strip category from recipes: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM recipe_categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete recipe category: %w", err)
		}
		return requireAffected(res, recipedomain.ErrRecipeCategoryNotFound)
	})
}

func (r *RecipeCategoryRepository) query(ctx context.Context, q string, args ...any) ([]*models.RecipeCategory, error) {
	rows, err := r.db.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipe categories: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*models.RecipeCategory
	for rows.Next() {
		var c models.RecipeCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe category: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe categories: %w", err)
	}
	return out, nil
}

func translateCategoryErr(err error) error {
	if database.IsUniqueViolation(err) {
		return recipedomain.ErrRecipeCategoryAlreadyExists
	}
	return fmt.Errorf("write recipe category: %w", err)
}
