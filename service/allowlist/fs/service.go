package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hookgate/hookgate/service/allowlist"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// data is the persisted record layout.
type data struct {
	Tools []string `json:"tools"`
}

// Service implements a filesystem-backed allowlist.Store. Every mutation
// performs a full read-modify-write cycle; a single writer per file is
// assumed, so the mutex only guards in-process concurrency.
type Service struct {
	url    string
	fs     afs.Service
	logger *slog.Logger
	mu     sync.Mutex
}

var _ allowlist.Store = (*Service)(nil)

// New creates a store persisting to the supplied URL (a plain path or any
// scheme viant/afs understands).
func New(URL string, options ...Option) *Service {
	ret := &Service{url: URL, fs: afs.New(), logger: slog.Default()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// IsAllowed reports whether tool is in the persisted set.
func (s *Service) IsAllowed(ctx context.Context, tool string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.read(ctx)
	for _, candidate := range d.Tools {
		if candidate == tool {
			return true
		}
	}
	return false
}

// Add inserts tool and persists the updated set. It is idempotent.
func (s *Service) Add(ctx context.Context, tool string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.read(ctx)
	for _, candidate := range d.Tools {
		if candidate == tool {
			return nil
		}
	}
	d.Tools = append(d.Tools, tool)
	return s.write(ctx, d)
}

// Remove deletes tool and persists the updated set. It is idempotent.
func (s *Service) Remove(ctx context.Context, tool string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.read(ctx)
	kept := d.Tools[:0]
	for _, candidate := range d.Tools {
		if candidate != tool {
			kept = append(kept, candidate)
		}
	}
	d.Tools = kept
	return s.write(ctx, d)
}

// List returns a snapshot of the current members.
func (s *Service) List(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.read(ctx)
	return append([]string(nil), d.Tools...)
}

// Clear resets the set to empty and persists it.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, &data{Tools: []string{}})
}

// read loads the persisted record. A missing file reads as the empty set;
// malformed content also reads as empty so a corrupted store never blocks a
// decision, with a warning so the recovery is observable.
func (s *Service) read(ctx context.Context) *data {
	exists, err := s.fs.Exists(ctx, s.url)
	if err != nil || !exists {
		return &data{}
	}
	raw, err := s.fs.DownloadWithURL(ctx, s.url)
	if err != nil {
		s.logger.Warn("failed to read allow-list, treating as empty", "url", s.url, "error", err)
		return &data{}
	}
	d := &data{}
	if err := json.Unmarshal(raw, d); err != nil {
		s.logger.Warn("corrupt allow-list, treating as empty", "url", s.url, "error", err)
		return &data{}
	}
	return d
}

func (s *Service) write(ctx context.Context, d *data) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal allow-list: %w", err)
	}
	if err := s.fs.Upload(ctx, s.url, file.DefaultFileOsMode, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("failed to persist allow-list to %s: %w", s.url, err)
	}
	return nil
}
