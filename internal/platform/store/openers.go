package store

import (
	"context"
	"fmt"
	"time"

	chx "linkharvest/internal/platform/store/ch"
	"linkharvest/internal/platform/store/pg"
)

// ping retry knobs, vars so tests can shrink them
var (
	pingAttempts   = 20
	pingTimeout    = 3 * time.Second
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
)

// openPG opens pg, waits for a healthy pool and wraps it with the sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	p, err := pg.Open(ctx, pg.Config{
		URL:        cfg.PG.URL,
		MaxConns:   cfg.PG.MaxConns,
		AppName:    cfg.AppName,
		LogSQL:     cfg.PG.LogSQL,
		RedactArgs: cfg.PG.RedactArgs,
		Slow:       time.Duration(cfg.PG.SlowQueryMs) * time.Millisecond,
	}, s.Log, nil)
	if err != nil {
		return nil, err
	}

	if err := retryPing(ctx, p.Pool.Ping); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:      cfg.CH.URL,
		Database: cfg.CH.Database,
		Role:     cfg.AppName,
		Tag:      "store",
	})
	if err != nil {
		return nil, err
	}
	if err := retryPing(ctx, c.Ping); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("clickhouse: %w", err)
	}
	return newCHAdapter(c), nil
}

// retryPing pings with exponential backoff until success, ctx end or attempts run out
func retryPing(ctx context.Context, ping func(context.Context) error) error {
	var lastErr error
	backoff := backoffStart
	for i := 0; i < pingAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = ping(toCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffCeiling)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", pingAttempts, lastErr)
}
