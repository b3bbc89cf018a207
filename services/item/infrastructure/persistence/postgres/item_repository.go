// Package postgres implements the item repositories on PostgreSQL through
// database/sql and the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/database"
	"github.com/ghuser/pantry/pkg/events"
	itemdomain "github.com/ghuser/pantry/services/item/domain"
	domainevents "github.com/ghuser/pantry/services/item/domain/events"
	"github.com/ghuser/pantry/services/item/domain/models"
	"github.com/ghuser/pantry/services/item/domain/repositories"
)

const itemColumns = `i.id, i.name, i.category_id, c.name, i.created_at`

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository backed by the given connection pool
// and event bus. The bus is used to publish item events inside the write transaction.
func NewItemRepository(database *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: database, bus: bus}
}

// Save persists a new Item and publishes an ItemCreatedEvent within the same transaction.
// Returns ErrItemAlreadyExists on a duplicate name and ErrItemCategoryNotFound on
// an unknown category.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, name, category_id, created_at) VALUES ($1, $2, $3, $4)`,
			item.ID, item.Name.String(), item.CategoryID, item.CreatedAt,
		)
		if err != nil {
			return translateItemErr(err)
		}

		if r.bus == nil {
			return nil
		}
		event := domainevents.ItemCreatedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     item.ID,
			CategoryID: item.CategoryID,
			Name:       item.Name.String(),
			OccurredAt: item.CreatedAt,
		}
		if err := r.bus.PublishInTx(ctx, tx, domainevents.TopicItemCreated, event.EventID, event.Version, event); err != nil {
			return fmt.Errorf("publish item created: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an Item with its category name. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		   FROM items i JOIN item_categories c ON c.id = i.category_id
		  WHERE i.id = $1`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, itemdomain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// List returns items ordered by name and the total count.
func (r *ItemRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+itemColumns+`
		   FROM items i JOIN item_categories c ON c.id = i.category_id
		  ORDER BY i.name
		  LIMIT $1 OFFSET $2`, limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate items: %w", err)
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT count(*) FROM items`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	return items, total, nil
}

// Update persists name and category changes to an existing Item.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	res, err := r.db.DB().ExecContext(ctx,
		`UPDATE items SET name = $2, category_id = $3 WHERE id = $1`,
		item.ID, item.Name.String(), item.CategoryID,
	)
	if err != nil {
		return translateItemErr(err)
	}
	return requireAffected(res, itemdomain.ErrItemNotFound)
}

// Delete removes an item and publishes ItemDeletedEvent in the same transaction.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if err := requireAffected(res, itemdomain.ErrItemNotFound); err != nil {
			return err
		}

		if r.bus == nil {
			return nil
		}
		event := domainevents.ItemDeletedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     id,
			OccurredAt: time.Now().UTC(),
		}
		if err := r.bus.PublishInTx(ctx, tx, domainevents.TopicItemDeleted, event.EventID, event.Version, event); err != nil {
			return fmt.Errorf("publish item deleted: %w", err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*models.Item, error) {
	var (
		item models.Item
		name string
	)
	if err := s.Scan(&item.ID, &name, &item.CategoryID, &item.CategoryName, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Name = models.Name(name)
	return &item, nil
}

func translateItemErr(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return itemdomain.ErrItemAlreadyExists
	case database.IsForeignKeyViolation(err):
		return itemdomain.ErrItemCategoryNotFound
	default:
		return fmt.Errorf("write item: %w", err)
	}
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
