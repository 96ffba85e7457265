// Package query builds primary-key and secondary-index lookups from the
// catalog. Every function takes a dbx.DBTX, so the same code runs inside a
// coordinator transaction or directly against a pool.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc decodes one row selected with Collection.SelectColumns.
type ScanFunc[T any] func(Scanner) (T, error)

func selectSQL(c catalog.Collection) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(c.SelectColumns(), ", "), c.Name)
}

// Get returns the record with the given key or common.ErrNotFound.
func Get[T any](ctx context.Context, db dbx.DBTX, c catalog.Collection, key any, scan ScanFunc[T]) (T, error) {
	var zero T
	q := selectSQL(c) + fmt.Sprintf(" WHERE %s = ?", c.Key)
	v, err := scan(db.QueryRowContext(ctx, q, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%s %v: %w", c.Name, key, common.ErrNotFound)
		}
		return zero, fmt.Errorf("failed to get %s %v: %w", c.Name, key, store.Translate(err))
	}
	return v, nil
}

// All returns every record of c in insertion order.
func All[T any](ctx context.Context, db dbx.DBTX, c catalog.Collection, scan ScanFunc[T]) ([]T, error) {
	q := selectSQL(c) + fmt.Sprintf(" ORDER BY %s", c.Key)
	return list(ctx, db, c, q, scan)
}

// ByIndex returns the records whose indexed column equals value, in
// insertion order. A unique index yields at most one record.
func ByIndex[T any](ctx context.Context, db dbx.DBTX, c catalog.Collection, index string, value any, scan ScanFunc[T]) ([]T, error) {
	ix, err := c.Index(index)
	if err != nil {
		return nil, err
	}
	q := selectSQL(c) + fmt.Sprintf(" WHERE %s = ? ORDER BY %s", ix.Column, c.Key)
	out, err := list(ctx, db, c, q, scan, value)
	if err != nil {
		return nil, err
	}
	if ix.Unique && len(out) > 1 {
		return nil, fmt.Errorf("unique index %s.%s returned %d rows", c.Name, ix.Name, len(out))
	}
	return out, nil
}

// OneByIndex is ByIndex for unique indexes: the single match or
// common.ErrNotFound.
func OneByIndex[T any](ctx context.Context, db dbx.DBTX, c catalog.Collection, index string, value any, scan ScanFunc[T]) (T, error) {
	var zero T
	out, err := ByIndex(ctx, db, c, index, value, scan)
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, fmt.Errorf("%s %s=%v: %w", c.Name, index, value, common.ErrNotFound)
	}
	return out[0], nil
}

func list[T any](ctx context.Context, db dbx.DBTX, c catalog.Collection, q string, scan ScanFunc[T], args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.Name, store.Translate(err))
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", c.Name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", c.Name, store.Translate(err))
	}
	return out, nil
}

// Exists reports whether a record with key exists.
func Exists(ctx context.Context, db dbx.DBTX, c catalog.Collection, key any) (bool, error) {
	var n int
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", c.Name, c.Key)
	if err := db.QueryRowContext(ctx, q, key).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check %s %v: %w", c.Name, key, store.Translate(err))
	}
	return n > 0, nil
}

// Count returns the number of records in c.
func Count(ctx context.Context, db dbx.DBTX, c catalog.Collection) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.Name).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.Name, store.Translate(err))
	}
	return n, nil
}

// Insert adds a record. values follow c.Columns. For auto-keyed collections
// a zero key lets the store assign the next one; the assigned key is
// returned. Unique violations surface as common.ErrDuplicateKey and leave
// nothing behind.
func Insert(ctx context.Context, db dbx.DBTX, c catalog.Collection, key int64, values ...any) (int64, error) {
	if len(values) != len(c.Columns) {
		return 0, fmt.Errorf("insert %s: got %d values for %d columns", c.Name, len(values), len(c.Columns))
	}
	cols := c.Columns
	args := values
	if key != 0 || !c.AutoKey {
		cols = c.SelectColumns()
		args = append([]any{key}, values...)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", c.Name, strings.Join(cols, ", "), placeholders(len(cols)))

	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", c.Name, store.Translate(err))
	}
	if key != 0 || !c.AutoKey {
		return key, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted %s key: %w", c.Name, err)
	}
	return id, nil
}

// Delete removes the record with key and reports whether it existed.
func Delete(ctx context.Context, db dbx.DBTX, c catalog.Collection, key any) (bool, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", c.Name, c.Key)
	n, err := exec(ctx, db, c, q, key)
	return n > 0, err
}

// DeleteByIndex removes every record whose indexed column equals value.
func DeleteByIndex(ctx context.Context, db dbx.DBTX, c catalog.Collection, index string, value any) (int64, error) {
	ix, err := c.Index(index)
	if err != nil {
		return 0, err
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", c.Name, ix.Column)
	return exec(ctx, db, c, q, value)
}

func exec(ctx context.Context, db dbx.DBTX, c catalog.Collection, q string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", c.Name, store.Translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
