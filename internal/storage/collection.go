package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/google/uuid"
)

type scanner interface {
	Scan(dest ...any) error
}

// Table describes a record table owned through its user_id column.
// Every table has id, user_id and created_at. Columns lists the rest,
// which are the only ones an update may touch. values and scan work on
// the full row in that order.
type Table[T any] struct {
	Name    string
	Columns []string

	values func(*T) []any
	scan   func(scanner) (*T, error)
	keys   func(rec *T, id, owner uuid.UUID, createdAt time.Time)
}

// Collection is the ownership-scoped store for one record table. Every
// read and write is filtered by the owner, so a record of another user is
// never returned, changed or removed.
type Collection[T any] struct {
	db      *sql.DB
	dialect Dialect
	table   Table[T]
	columns string
}

func NewCollection[T any](db *sql.DB, dialect Dialect, table Table[T]) *Collection[T] {
	cols := append([]string{"id", "user_id"}, table.Columns...)
	cols = append(cols, "created_at")

	return &Collection[T]{
		db:      db,
		dialect: dialect,
		table:   table,
		columns: strings.Join(cols, ", "),
	}
}

func (c *Collection[T]) op(name string) string {
	return "storage." + c.table.Name + "." + name
}

// List returns every record of owner, oldest first. No records is not an error.
func (c *Collection[T]) List(ctx context.Context, owner uuid.UUID) ([]T, error) {
	op := c.op("List")

	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ? ORDER BY created_at, id", c.columns, c.table.Name)
	rows, err := c.db.QueryContext(ctx, c.dialect.rebind(query), owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		rec, err := c.table.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

// Get returns domain.ErrNotFound both for a missing record and for one owned
// by somebody else.
func (c *Collection[T]) Get(ctx context.Context, owner, id uuid.UUID) (*T, error) {
	op := c.op("Get")

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND user_id = ?", c.columns, c.table.Name)
	rec, err := c.table.scan(c.db.QueryRowContext(ctx, c.dialect.rebind(query), id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %s %s: %w", op, c.table.Name, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// Create stores rec under owner with a fresh id and creation time. Any id or
// owner already set on rec is overwritten.
func (c *Collection[T]) Create(ctx context.Context, owner uuid.UUID, rec *T) (*T, error) {
	op := c.op("Create")

	c.table.keys(rec, uuid.New(), owner, now())

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.table.Columns)+3), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", c.table.Name, c.columns, placeholders)

	if _, err := c.db.ExecContext(ctx, c.dialect.rebind(query), c.table.values(rec)...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// Update applies changes only where both id and owner match, in a single
// statement. When nothing matched, the record is classified as foreign
// (domain.ErrForbidden) or absent (domain.ErrNotFound).
func (c *Collection[T]) Update(ctx context.Context, owner, id uuid.UUID, changes map[string]any) (*T, error) {
	op := c.op("Update")

	if len(changes) == 0 {
		return nil, fmt.Errorf("%s: %w: no fields to update", op, domain.ErrInvalidRequest)
	}

	keys := make([]string, 0, len(changes))
	for k := range changes {
		if !slices.Contains(c.table.Columns, k) {
			return nil, fmt.Errorf("%s: %w: unknown field %q", op, domain.ErrInvalidRequest, k)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	set := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		set = append(set, k+" = ?")
		args = append(args, changes[k])
	}
	args = append(args, id, owner)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", c.table.Name, strings.Join(set, ", "))
	res, err := c.db.ExecContext(ctx, c.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.checkAffected(ctx, op, res, owner, id); err != nil {
		return nil, err
	}

	return c.Get(ctx, owner, id)
}

// Delete removes the record when owner holds it. Errors match Update.
func (c *Collection[T]) Delete(ctx context.Context, owner, id uuid.UUID) error {
	op := c.op("Delete")

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", c.table.Name)
	res, err := c.db.ExecContext(ctx, c.dialect.rebind(query), id, owner)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return c.checkAffected(ctx, op, res, owner, id)
}

func (c *Collection[T]) checkAffected(ctx context.Context, op string, res sql.Result, owner, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}

	var holder uuid.UUID
	query := fmt.Sprintf("SELECT user_id FROM %s WHERE id = ?", c.table.Name)
	err = c.db.QueryRowContext(ctx, c.dialect.rebind(query), id).Scan(&holder)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %s %s: %w", op, c.table.Name, id, domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	case holder != owner:
		return fmt.Errorf("%s: %s %s: %w", op, c.table.Name, id, domain.ErrForbidden)
	default:
		return fmt.Errorf("%s: %s %s: %w", op, c.table.Name, id, domain.ErrNotFound)
	}
}
