package stop

import (
	"log/slog"

	"github.com/viant/afs"
)

// Option customises the stop notifier.
type Option func(*Service)

// WithHostname sets the host name included in notices.
func WithHostname(hostname string) Option {
	return func(s *Service) {
		s.hostname = hostname
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFS sets the file service used to read transcripts.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		if fs != nil {
			s.fs = fs
		}
	}
}
