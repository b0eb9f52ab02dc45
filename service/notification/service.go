// Package notification relays agent notification events, such as permission
// prompts awaiting input or idle sessions, to a messenger.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hookgate/hookgate/service/messenger"
)

// maxMessageLen caps the relayed message body.
const maxMessageLen = 500

// Input is the notification event read from stdin.
type Input struct {
	NotificationType string `json:"notification_type"`
	Message          string `json:"message"`
	SessionID        string `json:"session_id"`
	Cwd              string `json:"cwd"`
}

// ParseInput decodes a notification event from r.
func ParseInput(r io.Reader) (*Input, error) {
	var input Input
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to parse notification input: %w", err)
	}
	return &input, nil
}

// Service renders notification events and sends them over a messenger.
type Service struct {
	channel  messenger.Messenger
	hostname string
}

// New creates a notification relay for the supplied messenger.
func New(channel messenger.Messenger, hostname string) *Service {
	return &Service{channel: channel, hostname: hostname}
}

// Notify formats the event and sends it.
func (s *Service) Notify(ctx context.Context, input *Input) error {
	return s.channel.Notify(ctx, Format(input, s.hostname))
}

// Format renders a notification event as plain text.
func Format(input *Input, hostname string) string {
	icon, label := "📢", "Notification"
	switch input.NotificationType {
	case "permission_prompt":
		icon, label = "🔐", "Permission Required"
	case "idle_prompt":
		icon, label = "💤", "Idle - Waiting for Input"
	}

	lines := []string{
		icon + " " + label,
	}
	if hostname != "" {
		lines = append(lines, "🖥 Host: "+hostname)
	}
	if input.Cwd != "" {
		lines = append(lines, "📁 Project: "+filepath.Base(input.Cwd))
	}
	if input.Message != "" {
		lines = append(lines, "", truncate(input.Message, maxMessageLen))
	}
	return strings.Join(lines, "\n")
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
