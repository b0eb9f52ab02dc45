package approval

import (
	"log/slog"
	"time"
)

// Option customises the coordinator.
type Option func(*Service)

// WithTimeout overrides the bounded wait for a human reply.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithHostname tags published prompts with a host label for multi-machine
// setups.
func WithHostname(hostname string) Option {
	return func(s *Service) { s.hostname = hostname }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}
