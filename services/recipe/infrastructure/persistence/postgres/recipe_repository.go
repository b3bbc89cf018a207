// Package postgres implements the recipe repositories on PostgreSQL. The
// collection fields of a recipe are stored as JSONB columns.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/database"
	"github.com/ghuser/pantry/pkg/events"
	recipedomain "github.com/ghuser/pantry/services/recipe/domain"
	domainevents "github.com/ghuser/pantry/services/recipe/domain/events"
	"github.com/ghuser/pantry/services/recipe/domain/models"
	"github.com/ghuser/pantry/services/recipe/domain/repositories"
)

const recipeColumns = `id, name, time_in_minutes, image_url, image_filename, ingredients,
	instructions, notes, category_ids, created_by, approved, created_at, updated_at`

// RecipeRepository implements repositories.RecipeRepository against PostgreSQL.
type RecipeRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewRecipeRepository returns a RecipeRepository. bus may be nil, in which
// case no events are published.
func NewRecipeRepository(db *database.Database, bus *events.EventBus) *RecipeRepository {
	return &RecipeRepository{db: db, bus: bus}
}

// Save inserts a new recipe.
func (r *RecipeRepository) Save(ctx context.Context, rec *models.Recipe) error {
	doc, err := encodeRecipe(rec)
	if err != nil {
		return err
	}
	_, err = r.db.DB().ExecContext(ctx,
		`INSERT INTO recipes (`+recipeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.Name, rec.TimeInMinutes, rec.Image.URL, rec.Image.Filename,
		doc.ingredients, doc.instructions, doc.notes, doc.categoryIDs,
		rec.CreatedBy, rec.Approved, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// GetByID returns ErrRecipeNotFound if the recipe does not exist.
func (r *RecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	row := r.db.DB().QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
	rec, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recipedomain.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe: %w", err)
	}
	return rec, nil
}

// GetByIDs loads all listed recipes with a single ANY($1) query.
func (r *RecipeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	return collectRecipes(rows)
}

// List returns recipes ordered by name and the total count.
func (r *RecipeRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Recipe, int, error) {
	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY name, id LIMIT $1 OFFSET $2`, limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query recipes: %w", err)
	}
	recs, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT count(*) FROM recipes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}
	return recs, total, nil
}

// Update replaces every mutable column and publishes RecipeUpdatedEvent.
func (r *RecipeRepository) Update(ctx context.Context, rec *models.Recipe) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := updateRecipe(ctx, tx, rec); err != nil {
			return err
		}
		return r.publishUpdated(ctx, tx, rec.ID)
	})
}

// Delete removes a recipe and publishes RecipeDeletedEvent.
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		if err := requireAffected(res, recipedomain.ErrRecipeNotFound); err != nil {
			return err
		}
		if r.bus == nil {
			return nil
		}
		event := domainevents.RecipeDeletedEvent{
			EventID:    uuid.New(),
			Version:    1,
			RecipeID:   id,
			OccurredAt: time.Now().UTC(),
		}
		if err := r.bus.PublishInTx(ctx, tx, domainevents.TopicRecipeDeleted, event.EventID, event.Version, event); err != nil {
			return fmt.Errorf("publish recipe deleted: %w", err)
		}
		return nil
	})
}

// PruneItem strips itemID from every recipe that lists it. Matching rows are
// locked, rewritten and announced with RecipeUpdatedEvent in one transaction.
func (r *RecipeRepository) PruneItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	filter, err := json.Marshal([]map[string]string{{"item_id": itemID.String()}})
	if err != nil {
		return nil, fmt.Errorf("encode item filter: %w", err)
	}

	var changed []uuid.UUID
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+recipeColumns+` FROM recipes WHERE ingredients @> $1::jsonb FOR UPDATE`, filter)
		if err != nil {
			return fmt.Errorf("query recipes by item: %w", err)
		}
		recs, err := collectRecipes(rows)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, rec := range recs {
			if !rec.RemoveItem(itemID) {
				continue
			}
			rec.UpdatedAt = now
			if err := updateRecipe(ctx, tx, rec); err != nil {
				return err
			}
			if err := r.publishUpdated(ctx, tx, rec.ID); err != nil {
				return err
			}
			changed = append(changed, rec.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

func (r *RecipeRepository) publishUpdated(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	if r.bus == nil {
		return nil
	}
	event := domainevents.RecipeUpdatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		RecipeID:   id,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.bus.PublishInTx(ctx, tx, domainevents.TopicRecipeUpdated, event.EventID, event.Version, event); err != nil {
		return fmt.Errorf("publish recipe updated: %w", err)
	}
	return nil
}

func updateRecipe(ctx context.Context, tx *sql.Tx, rec *models.Recipe) error {
	doc, err := encodeRecipe(rec)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE recipes
		    SET name = $2, time_in_minutes = $3, image_url = $4, image_filename = $5,
		        ingredients = $6, instructions = $7, notes = $8, category_ids = $9,
		        approved = $10, updated_at = $11
		  WHERE id = $1`,
		rec.ID, rec.Name, rec.TimeInMinutes, rec.Image.URL, rec.Image.Filename,
		doc.ingredients, doc.instructions, doc.notes, doc.categoryIDs,
		rec.Approved, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return requireAffected(res, recipedomain.ErrRecipeNotFound)
}

// recipeDoc holds the JSON-encoded collection columns of a recipe.
type recipeDoc struct {
	ingredients  []byte
	instructions []byte
	notes        []byte
	categoryIDs  []byte
}

func encodeRecipe(rec *models.Recipe) (recipeDoc, error) {
	var (
		doc recipeDoc
		err error
	)
	if doc.ingredients, err = json.Marshal(nonNil(rec.Ingredients)); err != nil {
		return doc, fmt.Errorf("encode ingredients: %w", err)
	}
	if doc.instructions, err = json.Marshal(nonNil(rec.Instructions)); err != nil {
		return doc, fmt.Errorf("encode instructions: %w", err)
	}
	if doc.notes, err = json.Marshal(nonNil(rec.Notes)); err != nil {
		return doc, fmt.Errorf("encode notes: %w", err)
	}
	if doc.categoryIDs, err = json.Marshal(nonNil(rec.CategoryIDs)); err != nil {
		return doc, fmt.Errorf("encode category ids: %w", err)
	}
	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s rowScanner) (*models.Recipe, error) {
	var (
		rec models.Recipe
		doc recipeDoc
	)
	err := s.Scan(&rec.ID, &rec.Name, &rec.TimeInMinutes, &rec.Image.URL, &rec.Image.Filename,
		&doc.ingredients, &doc.instructions, &doc.notes, &doc.categoryIDs,
		&rec.CreatedBy, &rec.Approved, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc.ingredients, &rec.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal(doc.instructions, &rec.Instructions); err != nil {
		return nil, fmt.Errorf("decode instructions: %w", err)
	}
	if err := json.Unmarshal(doc.notes, &rec.Notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if err := json.Unmarshal(doc.categoryIDs, &rec.CategoryIDs); err != nil {
		return nil, fmt.Errorf("decode category ids: %w", err)
	}
	return &rec, nil
}

func collectRecipes(rows *sql.Rows) ([]*models.Recipe, error) {
	defer rows.Close() //nolint:errcheck

	var recs []*models.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return recs, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
