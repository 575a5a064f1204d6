// Package pg builds the pgxpool behind the store's SQL seam
package pg

import (
	"context"
	"time"

	"linkharvest/internal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	URL      string
	MaxConns int32
	// AppName lands in pg_stat_activity.application_name
	AppName string

	// LogSQL logs every statement; otherwise only statements slower than Slow are logged
	LogSQL     bool
	RedactArgs bool
	Slow       time.Duration
}

type PG struct {
	Pool *pgxpool.Pool
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg, installs the statement tracer and builds the pool; mut, when set,
// gets the last word on the pool config. Connections are made lazily
func Open(ctx context.Context, cfg Config, log logger.Logger, mut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		if pcfg.ConnConfig.RuntimeParams == nil {
			pcfg.ConnConfig.RuntimeParams = map[string]string{}
		}
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if cfg.LogSQL || cfg.Slow > 0 {
		pcfg.ConnConfig.Tracer = NewTracer(log, TraceOptions{All: cfg.LogSQL, Redact: cfg.RedactArgs, Slow: cfg.Slow})
	}
	if mut != nil {
		mut(pcfg)
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool}, nil
}

// Close is safe on a nil or unopened PG
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
