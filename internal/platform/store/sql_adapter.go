package store

import (
	"context"
	"errors"

	"linkharvest/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgExecutor is what pgxpool.Pool and pgx.Tx have in common
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// sqlConn narrows a pgx executor to RowQuerier. Statement logging lives in the
// pool's pgx tracer, so pool and transaction queries are traced alike
type sqlConn struct{ ex pgExecutor }

func (c sqlConn) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	ct, err := c.ex.Exec(ctx, sql, args...)
	return tag{ct}, err
}

func (c sqlConn) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := c.ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows{rs}, nil
}

func (c sqlConn) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return c.ex.QueryRow(ctx, sql, args...)
}

type pgAdapter struct {
	sqlConn
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{sqlConn: sqlConn{ex: p.Pool}, p: p}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil || a.p.Pool == nil {
		return errors.New("pg: not open")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error {
	a.p.Close()
	return nil
}

// Tx commits when fn returns nil and rolls back otherwise
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(sqlConn{ex: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type rows struct{ pgx.Rows }

func (x rows) Columns() []string {
	fds := x.FieldDescriptions()
	names := make([]string, 0, len(fds))
	for _, fd := range fds {
		names = append(names, fd.Name)
	}
	return names
}

type tag struct{ pgconn.CommandTag }
