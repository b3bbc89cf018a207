// Package postgres stores users as one row per aggregate with the menu,
// favourites, items and list snapshot in JSONB columns.
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
	userdomain "github.com/ghuser/pantry/services/user/domain"
	"github.com/ghuser/pantry/services/user/domain/models"
)

const userColumns = `id, username, password_hash, is_admin, favourite_recipes, recipe_menu,
	regular_items, extra_items, shopping_list, version, created_at, updated_at`

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

// NewUserRepository returns a UserRepository backed by the given pool.
func NewUserRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	doc, err := encodeUser(u)
	if err != nil {
		return err
	}
	_, err = r.db.DB().ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Username.String(), u.PasswordHash, u.IsAdmin,
		doc.favourites, doc.menu, doc.regulars, doc.extras, doc.list,
		u.Version, u.CreatedAt, u.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return userdomain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, r.db.DB().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, r.db.DB().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) getOne(_ context.Context, row *sql.Row) (*models.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result back guarded by the version it read.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, u *models.User) error) (*models.User, error) {
	var out *models.User
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return userdomain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		read := u.Version
		if err := fn(ctx, u); err != nil {
			return err
		}

		doc, err := encodeUser(u)
		if err != nil {
			return err
		}
		u.Version = read + 1
		u.UpdatedAt = time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`UPDATE users
			    SET favourite_recipes = $3, recipe_menu = $4, regular_items = $5,
			        extra_items = $6, shopping_list = $7, version = $8, updated_at = $9
			  WHERE id = $1 AND version = $2`,
			u.ID, read, doc.favourites, doc.menu, doc.regulars, doc.extras, doc.list,
			u.Version, u.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return userdomain.ErrVersionConflict
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) FindIDsByMenuRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	filter, err := json.Marshal([]map[string]string{{"recipe_id": recipeID.String()}})
	if err != nil {
		return nil, fmt.Errorf("encode recipe filter: %w", err)
	}
	return r.ids(ctx, `SELECT id FROM users WHERE recipe_menu @> $1::jsonb ORDER BY id`, filter)
}

func (r *UserRepository) FindIDsByRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	filter, err := json.Marshal([]map[string]string{{"recipe_id": recipeID.String()}})
	if err != nil {
		return nil, fmt.Errorf("encode recipe filter: %w", err)
	}
	return r.ids(ctx,
		`SELECT id FROM users
		  WHERE recipe_menu @> $1::jsonb OR favourite_recipes ? $2::text
		  ORDER BY id`, filter, recipeID.String())
}

func (r *UserRepository) FindIDsByItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	filter, err := json.Marshal([]map[string]string{{"item_id": itemID.String()}})
	if err != nil {
		return nil, fmt.Errorf("encode item filter: %w", err)
	}
	return r.ids(ctx,
		`SELECT id FROM users
		  WHERE shopping_list @> $1::jsonb OR extra_items @> $1::jsonb OR regular_items @> $1::jsonb
		  ORDER BY id`, filter)
}

// Usernames resolves ids with a single ANY($1) query.
func (r *UserRepository) Usernames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT id, username FROM users WHERE id = ANY($1::uuid[])`, strs)
	if err != nil {
		return nil, fmt.Errorf("query usernames: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var (
			id   uuid.UUID
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		out[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usernames: %w", err)
	}
	return out, nil
}

func (r *UserRepository) ids(ctx context.Context, q string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return out, nil
}

// userDoc holds the JSON-encoded collection columns of a user.
type userDoc struct {
	favourites []byte
	menu       []byte
	regulars   []byte
	extras     []byte
	list       []byte
}

func encodeUser(u *models.User) (userDoc, error) {
	var (
		doc userDoc
		err error
	)
	if doc.favourites, err = json.Marshal(nonNil(u.FavouriteRecipes)); err != nil {
		return doc, fmt.Errorf("encode favourite recipes: %w", err)
	}
	if doc.menu, err = json.Marshal(nonNil(u.RecipeMenu)); err != nil {
		return doc, fmt.Errorf("encode recipe menu: %w", err)
	}
	if doc.regulars, err = json.Marshal(nonNil(u.RegularItems)); err != nil {
		return doc, fmt.Errorf("encode regular items: %w", err)
	}
	if doc.extras, err = json.Marshal(nonNil(u.ExtraItems)); err != nil {
		return doc, fmt.Errorf("encode extra items: %w", err)
	}
	if doc.list, err = json.Marshal(nonNil(u.ShoppingList)); err != nil {
		return doc, fmt.Errorf("encode shopping list: %w", err)
	}
	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*models.User, error) {
	var (
		u        models.User
		username string
		doc      userDoc
	)
	err := s.Scan(&u.ID, &username, &u.PasswordHash, &u.IsAdmin,
		&doc.favourites, &doc.menu, &doc.regulars, &doc.extras, &doc.list,
		&u.Version, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Username = models.Username(username)

	for _, f := range []struct {
		raw  []byte
		dest any
		name string
	}{
		{doc.favourites, &u.FavouriteRecipes, "favourite recipes"},
		{doc.menu, &u.RecipeMenu, "recipe menu"},
		{doc.regulars, &u.RegularItems, "regular items"},
		{doc.extras, &u.ExtraItems, "extra items"},
		{doc.list, &u.ShoppingList, "shopping list"},
	} {
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}
	return &u, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
