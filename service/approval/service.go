package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hookgate/hookgate/policy"
	"github.com/hookgate/hookgate/service/allowlist"
	"github.com/hookgate/hookgate/service/messenger"
	"github.com/hookgate/hookgate/tracing"
)

// DefaultTimeout bounds how long a published request waits for a human
// reply before resolving Deny.
const DefaultTimeout = 300 * time.Second

// Service coordinates the end-to-end decision lifecycle: consult the
// allow-list, publish the request, correlate the reply, enforce the timeout
// and record an always-allow election.
type Service struct {
	store    allowlist.Store
	channel  messenger.Messenger
	timeout  time.Duration
	hostname string
	logger   *slog.Logger
	pending  *pending
}

// New creates a coordinator on top of the given store and messenger.
func New(store allowlist.Store, channel messenger.Messenger, options ...Option) *Service {
	ret := &Service{
		store:   store,
		channel: channel,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		pending: newPending(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Decide resolves exactly one verdict for the request. Timeouts and ignored
// replies degrade to Deny; only a channel publish failure is returned as an
// error, since it means the approver could never have seen the request.
func (s *Service) Decide(ctx context.Context, request *Request) (Verdict, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.decide")
	span.WithAttributes(map[string]string{"tool": request.Tool, "request": request.ID})
	defer span.End()

	prompt := request.Prompt(s.hostname)

	pol := policy.FromContext(ctx)
	if pol.Blocks(request.Tool) {
		s.logger.Info("tool blocked by policy", "tool", request.Tool, "request", request.ID)
		return VerdictDeny, nil
	}
	switch pol.EffectiveMode() {
	case policy.ModeDeny:
		s.logger.Info("policy mode denies all tools", "tool", request.Tool, "request", request.ID)
		return VerdictDeny, nil
	case policy.ModeAuto:
		return s.autoApprove(ctx, prompt, span)
	}
	if pol.Allows(request.Tool) || s.store.IsAllowed(ctx, request.Tool) {
		return s.autoApprove(ctx, prompt, span)
	}

	// Register the waiter and the reply listener before publishing, so a
	// reply arriving immediately after delivery cannot be missed.
	replyCh := s.pending.register(request.ID)
	defer s.pending.unregister(request.ID)
	cancel := s.channel.OnReply(s.dispatch)
	defer cancel()

	handle, err := s.channel.Publish(ctx, prompt)
	if err != nil {
		span.SetStatus(err)
		return "", fmt.Errorf("failed to publish permission request %s: %w", request.ID, err)
	}
	s.logger.Info("permission request published",
		"tool", request.Tool, "request", request.ID, "platform", s.channel.Platform())

	verdict, status := s.await(ctx, request, replyCh)

	// Best-effort: the verdict stands even when the edit fails.
	if err := s.channel.UpdateStatus(ctx, handle, prompt, status); err != nil {
		s.logger.Warn("failed to update prompt status", "request", request.ID, "error", err)
	}
	span.SetStatus(nil)
	return verdict, nil
}

// await blocks until a correlated reply arrives or the wait expires.
// Exactly one of the two completes the decision; the loser is discarded.
func (s *Service) await(ctx context.Context, request *Request, replyCh <-chan messenger.Reply) (Verdict, messenger.Status) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return s.resolveReply(ctx, request, reply)
	case <-timer.C:
		s.logger.Info("permission request timed out, denying", "request", request.ID)
		return VerdictDeny, messenger.StatusTimedOut
	case <-ctx.Done():
		s.logger.Info("permission request cancelled, denying", "request", request.ID)
		return VerdictDeny, messenger.StatusTimedOut
	}
}

func (s *Service) resolveReply(ctx context.Context, request *Request, reply messenger.Reply) (Verdict, messenger.Status) {
	switch reply.Action {
	case messenger.ActionApprove:
		return VerdictAllow, messenger.StatusApproved
	case messenger.ActionAlwaysAllow:
		tool := reply.Tool
		if tool == "" {
			tool = request.Tool
		}
		// Storage faults are absorbed: the human already approved.
		if err := s.store.Add(ctx, tool); err != nil {
			s.logger.Warn("failed to persist always-allow election", "tool", tool, "error", err)
		}
		return VerdictAllow, messenger.StatusAlwaysAllowed
	case messenger.ActionDeny:
		return VerdictDeny, messenger.StatusDenied
	default:
		// Unknown actions are filtered at the messenger layer; fail closed
		// should one slip through.
		s.logger.Warn("unrecognized reply action, denying", "action", reply.Action, "request", request.ID)
		return VerdictDeny, messenger.StatusDenied
	}
}

func (s *Service) autoApprove(ctx context.Context, prompt *messenger.Prompt, span *tracing.Span) (Verdict, error) {
	if err := s.channel.NotifyAutoApproved(ctx, prompt); err != nil {
		span.SetStatus(err)
		return "", fmt.Errorf("failed to send auto-approved notice for %s: %w", prompt.Tool, err)
	}
	s.logger.Info("tool auto-approved", "tool", prompt.Tool, "request", prompt.RequestID)
	return VerdictAllow, nil
}

// dispatch routes a platform reply to its waiter. Replies whose correlation
// token matches no outstanding request are logged and dropped.
func (s *Service) dispatch(reply messenger.Reply) {
	if !s.pending.resolve(reply) {
		s.logger.Debug("ignoring reply with no matching request", "request", reply.RequestID)
	}
}
