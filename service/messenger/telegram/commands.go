package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = "🔐 *hookgate*\n\n" +
	"I relay tool permission requests from coding sessions on your machines\\. " +
	"When a request arrives, press a button:\n\n" +
	"✅ Allow \\- approve this invocation\n" +
	"❌ Deny \\- reject this invocation\n" +
	"♾ Always Allow \\- approve and remember the tool\n\n" +
	"Unanswered requests are denied after the timeout\\."

func (s *Service) registerCommands() {
	s.client.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, s.handleHelp)
	s.client.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, s.handleHelp)
	s.client.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, s.handleStatus)
}

func (s *Service) handleStatus(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	s.mu.Lock()
	listeners := len(s.handlers)
	s.mu.Unlock()
	text := fmt.Sprintf("✅ hookgate is listening\nPending requests: %d", listeners)
	if _, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	}); err != nil {
		s.logger.Warn("failed to send status", "error", err)
	}
}

func (s *Service) handleHelp(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      helpText,
		ParseMode: models.ParseModeMarkdown,
	}); err != nil {
		s.logger.Warn("failed to send help text", "error", err)
	}
}
