package hookgate

import (
	"log/slog"

	"github.com/hookgate/hookgate/service/allowlist"
	"github.com/hookgate/hookgate/service/messenger"
)

// Option customises the service.
type Option func(s *Service)

// WithStore sets the allowlist store, replacing the file-backed default.
func WithStore(store allowlist.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithMessenger sets the messenger, replacing the one built from config.
func WithMessenger(channel messenger.Messenger) Option {
	return func(s *Service) { s.channel = channel }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
