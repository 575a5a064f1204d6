// Package store opens the Postgres link store and the optional ClickHouse analytics mirror
package store

import (
	"context"
	"errors"
	"fmt"

	"linkharvest/internal/platform/logger"
)

// Store holds the opened backends. A nil seam means the backend is disabled
type Store struct {
	Log logger.Logger
	PG  TxRunner
	CH  Clickhouse

	// bootstrap is DDL run once after Postgres opens, when PGConfig.Bootstrap is set
	bootstrap []string
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what repos query through, pool or transaction alike
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside one transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the analytics mirror seam
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

type Pinger interface{ Ping(context.Context) error }

// Open applies opts, then opens the backends enabled in cfg. On failure
// anything already opened is closed again
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	fail := func(err error) (*Store, error) {
		_ = s.Close(ctx)
		return nil, err
	}

	if cfg.PG.Enabled {
		pg, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = pg
		if cfg.PG.Bootstrap {
			if err := s.runBootstrap(ctx); err != nil {
				return fail(err)
			}
		}
	}

	if cfg.CH.Enabled {
		ch, err := openCH(ctx, cfg, s)
		if err != nil {
			return fail(err)
		}
		s.CH = ch
	}
	return s, nil
}

func (s *Store) runBootstrap(ctx context.Context) error {
	if len(s.bootstrap) == 0 {
		return nil
	}
	err := s.PG.Tx(ctx, func(q RowQuerier) error {
		for i, stmt := range s.bootstrap {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("postgres bootstrap: %w", err)
	}
	s.Log.Info().Int("statements", len(s.bootstrap)).Msg("postgres schema ensured")
	return nil
}

// Guard pings each open backend; failures are joined and prefixed pg: or ch:
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for _, b := range []struct {
		name string
		seam any
	}{{"pg", s.PG}, {"ch", s.CH}} {
		p, ok := b.seam.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the analytics mirror first, then the link store
func (s *Store) Close(_ context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
