package store

import (
	"context"
	"errors"

	perr "linkharvest/internal/platform/errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is returned by One when the query matched nothing
var ErrNoRows = errors.New("store: no rows")

// Scalar queries the first row, first column into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// One maps a single row with scan. A missing row yields ErrNoRows
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	item, err := scan(q.QueryRow(ctx, sql, args...))
	if IsNoRows(err) {
		var zero T
		return zero, ErrNoRows
	}
	return item, err
}

// Many uses a custom scanner to map all rows into []T
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// IsNoRows reports a missing row from either pgx or One
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNoRows)
}

// NotFound maps a missing row to a coded not-found error and passes other errors through
func NotFound(err error, format string, a ...any) error {
	if IsNoRows(err) {
		return perr.NotFoundf(format, a...)
	}
	return err
}
