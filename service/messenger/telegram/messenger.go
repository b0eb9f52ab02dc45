package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/hookgate/hookgate/service/messenger"
)

// Service publishes permission prompts to a Telegram chat and relays inline
// button presses back as replies.
type Service struct {
	client      BotClient
	chatID      string
	logger      *slog.Logger
	mu          sync.Mutex
	handlers    map[int]messenger.ReplyHandler
	nextHandler int
}

var _ messenger.Messenger = (*Service)(nil)

// New creates a Telegram messenger for the given bot token and chat.
func New(token, chatID string, options ...Option) (*Service, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram: chat id is required")
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to create bot: %w", err)
	}
	return newService(newRealBotClient(b), chatID, options...), nil
}

func newService(client BotClient, chatID string, options ...Option) *Service {
	s := &Service{
		client:   client,
		chatID:   chatID,
		logger:   slog.Default(),
		handlers: map[int]messenger.ReplyHandler{},
	}
	for _, option := range options {
		option(s)
	}
	s.logger = s.logger.With("messenger", "telegram")
	s.client.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, s.handleCallback)
	s.registerCommands()
	return s
}

func (s *Service) Platform() string { return "telegram" }

// Publish sends the prompt with Allow / Deny / Always Allow buttons.
func (s *Service) Publish(ctx context.Context, prompt *messenger.Prompt) (*messenger.Handle, error) {
	sent, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      s.chatID,
		Text:        renderPrompt(prompt),
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: s.keyboard(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to send prompt: %w", err)
	}
	s.logger.Debug("published prompt", "requestID", prompt.RequestID, "tool", prompt.Tool, "messageID", sent.ID)
	return &messenger.Handle{ChatID: s.chatID, MessageID: strconv.Itoa(sent.ID)}, nil
}

func (s *Service) keyboard(prompt *messenger.Prompt) models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Allow", CallbackData: messenger.EncodeCallback(prompt.RequestID, messenger.ActionApprove, "")},
				{Text: "❌ Deny", CallbackData: messenger.EncodeCallback(prompt.RequestID, messenger.ActionDeny, "")},
			},
			{
				{Text: "♾ Always Allow " + prompt.Tool, CallbackData: messenger.EncodeCallback(prompt.RequestID, messenger.ActionAlwaysAllow, prompt.Tool)},
			},
		},
	}
}

// NotifyAutoApproved sends a short informational notice; no buttons.
func (s *Service) NotifyAutoApproved(ctx context.Context, prompt *messenger.Prompt) error {
	_, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    s.chatID,
		Text:      renderAutoApproved(prompt),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("telegram: failed to send auto-approval notice: %w", err)
	}
	return nil
}

// Notify sends plain text to the configured chat. No parse mode is set so
// callers do not need to escape anything.
func (s *Service) Notify(ctx context.Context, text string) error {
	_, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram: failed to send notification: %w", err)
	}
	return nil
}

// UpdateStatus rewrites the prompt message with its outcome and strips the
// buttons so the decision cannot be taken twice.
func (s *Service) UpdateStatus(ctx context.Context, handle *messenger.Handle, prompt *messenger.Prompt, status messenger.Status) error {
	messageID, err := strconv.Atoi(handle.MessageID)
	if err != nil {
		return fmt.Errorf("telegram: invalid message id %q: %w", handle.MessageID, err)
	}
	_, err = s.client.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    handle.ChatID,
		MessageID: messageID,
		Text:      renderResolved(prompt, status),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("telegram: failed to update prompt status: %w", err)
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

// Listen runs the long-polling loop until the context is cancelled.
func (s *Service) Listen(ctx context.Context) error {
	s.logger.Info("listening for telegram updates", "chatID", s.chatID)
	s.client.Start(ctx)
	return ctx.Err()
}

// handleCallback decodes a button press and fans the reply out to every
// registered listener. Exact-match correlation happens at the listener.
func (s *Service) handleCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}
	callback, ok := messenger.ParseCallback(query.Data)
	if !ok {
		s.logger.Warn("ignoring malformed callback payload", "data", query.Data)
		return
	}
	if _, err := s.client.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            ackText(callback.Action, callback.Tool),
	}); err != nil {
		s.logger.Warn("failed to answer callback query", "error", err)
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
