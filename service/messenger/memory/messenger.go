package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hookgate/hookgate/service/messenger"
)

// Service is an in-process messenger. Tests publish prompts through it,
// inspect what was sent and inject replies as if a human had pressed a
// button.
type Service struct {
	mu           sync.Mutex
	published    []*messenger.Prompt
	autoApproved []*messenger.Prompt
	notices      []string
	statuses     []messenger.Status
	handlers     map[int]messenger.ReplyHandler
	nextHandler  int
	publishErr   error
	messageSeq   int
}

var _ messenger.Messenger = (*Service)(nil)

// New creates an empty in-memory messenger.
func New() *Service {
	return &Service{handlers: map[int]messenger.ReplyHandler{}}
}

// FailPublish makes subsequent Publish calls return err.
func (s *Service) FailPublish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishErr = err
}

func (s *Service) Publish(_ context.Context, prompt *messenger.Prompt) (*messenger.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	s.published = append(s.published, prompt)
	s.messageSeq++
	return &messenger.Handle{ChatID: "memory", MessageID: fmt.Sprintf("%d", s.messageSeq)}, nil
}

func (s *Service) NotifyAutoApproved(_ context.Context, prompt *messenger.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoApproved = append(s.autoApproved, prompt)
	return nil
}

func (s *Service) Notify(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, text)
	return nil
}

func (s *Service) UpdateStatus(_ context.Context, _ *messenger.Handle, _ *messenger.Prompt, status messenger.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *Service) OnReply(handler messenger.ReplyHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextHandler
	s.nextHandler++
	s.handlers[id] = handler
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

func (s *Service) Listen(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *Service) Platform() string { return "memory" }

// Inject delivers a reply to every registered listener, mimicking an
// asynchronous button press.
func (s *Service) Inject(reply messenger.Reply) {
	s.mu.Lock()
	handlers := make([]messenger.ReplyHandler, 0, len(s.handlers))
	for _, handler := range s.handlers {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()
	for _, handler := range handlers {
		handler(reply)
	}
}

// Published returns the prompts published so far.
func (s *Service) Published() []*messenger.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*messenger.Prompt(nil), s.published...)
}

// AutoApproved returns the auto-approved notices sent so far.
func (s *Service) AutoApproved() []*messenger.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*messenger.Prompt(nil), s.autoApproved...)
}

// Notices returns the plain notifications sent so far.
func (s *Service) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

// Statuses returns the status updates recorded so far.
func (s *Service) Statuses() []messenger.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]messenger.Status(nil), s.statuses...)
}

// ListenerCount reports the number of registered reply listeners.
func (s *Service) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}
