package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/hookgate/hookgate/service/messenger"
)

// session is the subset of discordgo.Session the messenger uses; it allows
// mock injection in tests.
type session interface {
	Open() error
	Close() error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	AddHandler(handler interface{}) func()
}

// Service publishes permission prompts to a Discord direct-message channel
// and relays button presses back as replies.
type Service struct {
	session     session
	userID      string
	logger      *slog.Logger
	mu          sync.Mutex
	channelID   string
	handlers    map[int]messenger.ReplyHandler
	nextHandler int
}

var _ messenger.Messenger = (*Service)(nil)

// New creates a Discord messenger that DMs the given user.
func New(token, userID string, options ...Option) (*Service, error) {
	if token == "" {
		return nil, fmt.Errorf("discord: token is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("discord: user id is required")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsDirectMessages
	return newService(dg, userID, options...), nil
}

func newService(s session, userID string, options ...Option) *Service {
	svc := &Service{
		session:  s,
		userID:   userID,
		logger:   slog.Default(),
		handlers: map[int]messenger.ReplyHandler{},
	}
	for _, option := range options {
		option(svc)
	}
	svc.logger = svc.logger.With("messenger", "discord")
	svc.session.AddHandler(svc.handleInteractionCreate)
	return svc
}

func (s *Service) Platform() string { return "discord" }

// channel lazily resolves the DM channel for the configured user.
func (s *Service) channel() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channelID != "" {
		return s.channelID, nil
	}
	ch, err := s.session.UserChannelCreate(s.userID)
	if err != nil {
		return "", fmt.Errorf("discord: failed to open DM channel with %s: %w", s.userID, err)
	}
	s.channelID = ch.ID
	return s.channelID, nil
}

// Publish sends the prompt as a DM with Allow / Deny / Always Allow buttons.
func (s *Service) Publish(ctx context.Context, prompt *messenger.Prompt) (*messenger.Handle, error) {
	channelID, err := s.channel()
	if err != nil {
		return nil, err
	}
	sent, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    renderPrompt(prompt),
		Components: buttons(prompt),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: failed to send prompt: %w", err)
	}
	s.logger.Debug("published prompt", "requestID", prompt.RequestID, "tool", prompt.Tool, "messageID", sent.ID)
	return &messenger.Handle{ChatID: channelID, MessageID: sent.ID}, nil
}

func buttons(prompt *messenger.Prompt) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Allow",
					Style:    discordgo.SuccessButton,
					CustomID: messenger.EncodeCallback(prompt.RequestID, messenger.ActionApprove, ""),
				},
				discordgo.Button{
					Label:    "Deny",
					Style:    discordgo.DangerButton,
					CustomID: messenger.EncodeCallback(prompt.RequestID, messenger.ActionDeny, ""),
				},
				discordgo.Button{
					Label:    "Always Allow " + prompt.Tool,
					Style:    discordgo.SecondaryButton,
					CustomID: messenger.EncodeCallback(prompt.RequestID, messenger.ActionAlwaysAllow, prompt.Tool),
				},
			},
		},
	}
}

// NotifyAutoApproved sends a short informational notice; no buttons.
func (s *Service) NotifyAutoApproved(ctx context.Context, prompt *messenger.Prompt) error {
	return s.Notify(ctx, renderAutoApproved(prompt))
}

// Notify sends plain text to the user's DM channel.
func (s *Service) Notify(ctx context.Context, text string) error {
	channelID, err := s.channel()
	if err != nil {
		return err
	}
	if _, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: text,
	}, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: failed to send notification: %w", err)
	}
	return nil
}

// UpdateStatus rewrites the prompt message with its outcome and removes the
// buttons.
func (s *Service) UpdateStatus(ctx context.Context, handle *messenger.Handle, prompt *messenger.Prompt, status messenger.Status) error {
	content := renderResolved(prompt, status)
	empty := []discordgo.MessageComponent{}
	_, err := s.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    handle.ChatID,
		ID:         handle.MessageID,
		Content:    &content,
		Components: &empty,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: failed to update prompt status: %w", err)
	}
	return nil
}

// OnReply registers a reply listener; the returned function removes it.
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

// Listen opens the gateway connection and blocks until the context is
// cancelled.
func (s *Service) Listen(ctx context.Context) error {
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("discord: failed to open gateway connection: %w", err)
	}
	s.logger.Info("listening for discord interactions", "userID", s.userID)
	<-ctx.Done()
	if err := s.session.Close(); err != nil {
		s.logger.Warn("failed to close discord session", "error", err)
	}
	return ctx.Err()
}

// handleInteractionCreate decodes a button press and fans the reply out to
// every registered listener.
func (s *Service) handleInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	callback, ok := messenger.ParseCallback(i.MessageComponentData().CustomID)
	if !ok {
		s.logger.Warn("ignoring malformed component payload", "customID", i.MessageComponentData().CustomID)
		return
	}
	// ack without changing the message; the coordinator edits it once the
	// decision is final
	if err := s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		s.logger.Warn("failed to acknowledge interaction", "error", err)
	}
	s.dispatch(messenger.Reply{
		RequestID: callback.RequestID,
		Action:    callback.Action,
		Tool:      callback.Tool,
	})
}

func (s *Service) dispatch(reply messenger.Reply) {
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
