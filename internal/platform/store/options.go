package store

import (
	"rowkeeper/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithClickhouse installs a ready clickhouse seam; Open then skips dialing CH
func WithClickhouse(c Clickhouse) Option {
	return func(s *Store) error {
		s.CH = c
		return nil
	}
}
