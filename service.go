package hookgate

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hookgate/hookgate/service/allowlist"
	allowfs "github.com/hookgate/hookgate/service/allowlist/fs"
	"github.com/hookgate/hookgate/service/approval"
	"github.com/hookgate/hookgate/service/hook"
	"github.com/hookgate/hookgate/service/messenger"
	"github.com/hookgate/hookgate/service/messenger/discord"
	"github.com/hookgate/hookgate/service/messenger/telegram"
	"github.com/hookgate/hookgate/service/notification"
	"github.com/hookgate/hookgate/service/stop"
)

// Service wires the allowlist store, a messenger and the decision
// coordinator into the handlers the CLI invokes.
type Service struct {
	config       *Config
	logger       *slog.Logger
	store        allowlist.Store
	channel      messenger.Messenger
	approval     *approval.Service
	stop         *stop.Service
	notification *notification.Service
}

// New creates a fully wired service from the configuration. The store and
// messenger can be overridden with options, which tests use to substitute
// in-memory doubles.
func New(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Service{
		config: config,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(s)
	}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init(ctx context.Context) error {
	if s.channel == nil {
		if err := s.config.Validate(); err != nil {
			return err
		}
		channel, err := s.newMessenger(ctx)
		if err != nil {
			return err
		}
		s.channel = channel
	}
	if s.store == nil {
		s.store = allowfs.New(s.config.AllowListURL, allowfs.WithLogger(s.logger))
	}
	s.approval = approval.New(s.store, s.channel,
		approval.WithTimeout(time.Duration(s.config.Preferences.TimeoutSeconds)*time.Second),
		approval.WithHostname(s.config.Hostname),
		approval.WithLogger(s.logger))
	s.stop = stop.New(s.channel,
		stop.WithHostname(s.config.Hostname),
		stop.WithLogger(s.logger))
	s.notification = notification.New(s.channel, s.config.Hostname)
	return nil
}

// newMessenger builds the primary messenger, falling back to whichever
// platform is configured when the preferred one is not.
func (s *Service) newMessenger(ctx context.Context) (messenger.Messenger, error) {
	useDiscord := s.config.Preferences.Primary == "discord" && s.config.discordEnabled() ||
		!s.config.telegramEnabled()
	if useDiscord {
		cfg := s.config.Messengers.Discord
		token, err := resolveToken(ctx, cfg.Token, cfg.TokenURL)
		if err != nil {
			return nil, err
		}
		return discord.New(token, cfg.UserID.String(), discord.WithLogger(s.logger))
	}
	cfg := s.config.Messengers.Telegram
	token, err := resolveToken(ctx, cfg.Token, cfg.TokenURL)
	if err != nil {
		return nil, err
	}
	return telegram.New(token, cfg.ChatID.String(), telegram.WithLogger(s.logger))
}

// HandlePermission reads a tool invocation from in, runs the permission
// decision and writes the verdict to out. A deny verdict is always written,
// even when the input is malformed or the decision fails, and the failure is
// still returned so the caller can tell it apart from a deliberate deny.
func (s *Service) HandlePermission(ctx context.Context, in io.Reader, out io.Writer) error {
	input, err := hook.ParseInput(in)
	if err != nil {
		if writeErr := hook.WriteOutput(out, approval.VerdictDeny); writeErr != nil {
			return writeErr
		}
		return err
	}
	verdict, err := s.approval.Decide(ctx, approval.NewRequest(input.ToolName, input.ToolInput))
	if err != nil {
		s.logger.Warn("permission decision failed, denying", "tool", input.ToolName, "error", err)
		if writeErr := hook.WriteOutput(out, approval.VerdictDeny); writeErr != nil {
			return writeErr
		}
		return err
	}
	return hook.WriteOutput(out, verdict)
}

// HandleStop reads a stop event from in and sends a completion notice.
func (s *Service) HandleStop(ctx context.Context, in io.Reader) error {
	input, err := stop.ParseInput(in)
	if err != nil {
		return err
	}
	return s.stop.Notify(ctx, input)
}

// HandleNotification reads a notification event from in and relays it.
func (s *Service) HandleNotification(ctx context.Context, in io.Reader) error {
	input, err := notification.ParseInput(in)
	if err != nil {
		return err
	}
	return s.notification.Notify(ctx, input)
}

// Listen runs the messenger's receive loop until the context is cancelled.
// Long-lived deployments use it to keep a single connection answering
// prompts from many hook invocations.
func (s *Service) Listen(ctx context.Context) error {
	return s.channel.Listen(ctx)
}

// Store exposes the allowlist store for management commands.
func (s *Service) Store() allowlist.Store {
	return s.store
}

// Messenger exposes the wired messenger.
func (s *Service) Messenger() messenger.Messenger {
	return s.channel
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}
