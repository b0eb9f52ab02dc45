package fs

import (
	"log/slog"

	"github.com/viant/afs"
)

// Option customises the store.
type Option func(*Service)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithFS overrides the storage service, e.g. to use an in-memory scheme in
// tests.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}
