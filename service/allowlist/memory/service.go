package memory

import (
	"context"
	"sync"

	"github.com/hookgate/hookgate/service/allowlist"
)

// Service is an in-memory allowlist.Store; useful for unit tests and
// single-invocation embedding where durability does not matter.
type Service struct {
	mu    sync.RWMutex
	tools []string
}

var _ allowlist.Store = (*Service)(nil)

// New creates an empty in-memory store.
func New(tools ...string) *Service {
	return &Service{tools: append([]string(nil), tools...)}
}

func (s *Service) IsAllowed(_ context.Context, tool string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, candidate := range s.tools {
		if candidate == tool {
			return true
		}
	}
	return false
}

func (s *Service) Add(_ context.Context, tool string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, candidate := range s.tools {
		if candidate == tool {
			return nil
		}
	}
	s.tools = append(s.tools, tool)
	return nil
}

func (s *Service) Remove(_ context.Context, tool string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tools[:0]
	for _, candidate := range s.tools {
		if candidate != tool {
			kept = append(kept, candidate)
		}
	}
	s.tools = kept
	return nil
}

func (s *Service) List(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.tools...)
}

func (s *Service) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = nil
	return nil
}
