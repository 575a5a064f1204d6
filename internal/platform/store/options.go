package store

import (
	"linkharvest/internal/platform/logger"
)

// Option configures a Store before its backends open
type Option func(*Store) error

func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithBootstrap queues idempotent DDL for Postgres. It only runs when
// PGConfig.Bootstrap is set
func WithBootstrap(stmts ...string) Option {
	return func(s *Store) error {
		s.bootstrap = append(s.bootstrap, stmts...)
		return nil
	}
}
