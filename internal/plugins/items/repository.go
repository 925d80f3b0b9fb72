package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
)

// ItemRepository defines the data access contract for actors and items.
type ItemRepository interface {
	CreateActor(ctx context.Context, actor *Actor) error
	FindActor(ctx context.Context, id string) (*Actor, error)

	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id string) (*Item, error)

	// ListByActor returns an actor's items in insertion order.
	ListByActor(ctx context.Context, actorID string) ([]Item, error)

	// UpdateMany writes the given items in a single transaction. Either
	// every row is written or none is.
	UpdateMany(ctx context.Context, items []Item) error

	Delete(ctx context.Context, id string) error
}

// itemRepository implements ItemRepository with MariaDB queries.
type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new item repository.
func NewItemRepository(db *sql.DB) ItemRepository {
	return &itemRepository{db: db}
}

// CreateActor inserts a new actor row.
func (r *itemRepository) CreateActor(ctx context.Context, actor *Actor) error {
	query := `INSERT INTO actors (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, actor.ID, actor.Name, actor.CreatedAt); err != nil {
		return fmt.Errorf("inserting actor: %w", err)
	}
	return nil
}

// FindActor retrieves an actor by id.
func (r *itemRepository) FindActor(ctx context.Context, id string) (*Actor, error) {
	a := &Actor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM actors WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("actor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning actor: %w", err)
	}
	return a, nil
}

// Create inserts a new item row.
func (r *itemRepository) Create(ctx context.Context, item *Item) error {
	systemJSON, err := json.Marshal(item.System)
	if err != nil {
		return fmt.Errorf("marshaling system data: %w", err)
	}

	query := `INSERT INTO items (id, actor_id, name, type, sort, system, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.ActorID, item.Name, item.Type, item.Sort, systemJSON,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

const itemColumns = `id, actor_id, name, type, sort, system, created_at, updated_at`

// FindByID retrieves a single item.
func (r *itemRepository) FindByID(ctx context.Context, id string) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("item not found")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListByActor returns all items of an actor ordered by insertion.
func (r *itemRepository) ListByActor(ctx context.Context, actorID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE actor_id = ? ORDER BY seq`, actorID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem scans one item row and decodes its system JSON.
func scanItem(s rowScanner) (*Item, error) {
	it := &Item{}
	var systemRaw []byte
	err := s.Scan(&it.ID, &it.ActorID, &it.Name, &it.Type, &it.Sort, &systemRaw,
		&it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	if len(systemRaw) > 0 {
		if err := json.Unmarshal(systemRaw, &it.System); err != nil {
			return nil, fmt.Errorf("unmarshaling system data: %w", err)
		}
	}
	return it, nil
}

// UpdateMany writes name, sort and system for each item inside one
// transaction.
func (r *itemRepository) UpdateMany(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE items SET name = ?, sort = ?, system = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("preparing item update: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		systemJSON, err := json.Marshal(it.System)
		if err != nil {
			return fmt.Errorf("marshaling system data: %w", err)
		}
		// MariaDB reports zero affected rows for unchanged values, so
		// existence is checked by the caller, not here.
		if _, err := stmt.ExecContext(ctx, it.Name, it.Sort, systemJSON, it.UpdatedAt, it.ID); err != nil {
			return fmt.Errorf("updating item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

// Delete removes an item.
func (r *itemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("item not found")
	}
	return nil
}
