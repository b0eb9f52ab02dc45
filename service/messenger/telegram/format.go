package telegram

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hookgate/hookgate/service/messenger"
)

const (
	maxSnippetLen = 200
	maxInputLen   = 500
)

// markdownSpecials are the characters MarkdownV2 requires escaped outside
// code spans.
const markdownSpecials = `_*[]()~` + "`" + `>#+-=|{}.!`

// escapeMarkdown escapes text for Telegram MarkdownV2 parse mode.
func escapeMarkdown(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeCode escapes text for use inside a MarkdownV2 code block, where only
// backticks and backslashes are special.
func escapeCode(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return strings.ReplaceAll(text, "`", "\\`")
}

// truncate limits text by runes; a byte slice could split a multibyte
// character and the Bot API rejects invalid UTF-8.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// renderPrompt builds the MarkdownV2 body of a permission request message.
// Well-known tools get a dedicated layout; everything else falls back to the
// raw input JSON.
func renderPrompt(prompt *messenger.Prompt) string {
	var b strings.Builder
	b.WriteString("🔐 *Permission Request*\n\n")
	if prompt.Hostname != "" {
		fmt.Fprintf(&b, "Host: `%s`\n", escapeCode(prompt.Hostname))
	}
	fmt.Fprintf(&b, "Tool: `%s`\n", escapeCode(prompt.Tool))

	fields := prompt.InputFields()
	switch prompt.Tool {
	case "Bash":
		if command, ok := fields["command"].(string); ok && command != "" {
			fmt.Fprintf(&b, "\nCommand:\n```\n%s\n```", escapeCode(truncate(command, maxInputLen)))
		}
	case "Edit", "Write", "MultiEdit":
		if path, ok := fields["file_path"].(string); ok && path != "" {
			fmt.Fprintf(&b, "File: `%s`\n", escapeCode(path))
		}
		if old, ok := fields["old_string"].(string); ok && old != "" {
			fmt.Fprintf(&b, "\nOld:\n```\n%s\n```", escapeCode(truncate(old, maxSnippetLen)))
		}
		if replacement, ok := fields["new_string"].(string); ok && replacement != "" {
			fmt.Fprintf(&b, "\nNew:\n```\n%s\n```", escapeCode(truncate(replacement, maxSnippetLen)))
		} else if content, ok := fields["content"].(string); ok && content != "" {
			fmt.Fprintf(&b, "\nContent:\n```\n%s\n```", escapeCode(truncate(content, maxSnippetLen)))
		}
	default:
		if len(fields) > 0 {
			raw, err := json.MarshalIndent(fields, "", "  ")
			if err == nil {
				fmt.Fprintf(&b, "\nInput:\n```\n%s\n```", escapeCode(truncate(string(raw), maxInputLen)))
			}
		}
	}
	return b.String()
}

// renderAutoApproved builds the notice sent when a tool resolves from the
// always-allow list without human involvement.
func renderAutoApproved(prompt *messenger.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Auto\\-approved*: `%s`", escapeCode(prompt.Tool))
	if prompt.Hostname != "" {
		fmt.Fprintf(&b, " on `%s`", escapeCode(prompt.Hostname))
	}
	return b.String()
}

// statusLine maps a terminal status to the line appended to the edited
// prompt.
func statusLine(status messenger.Status, tool string) string {
	switch status {
	case messenger.StatusApproved:
		return "✅ *Approved*"
	case messenger.StatusAlwaysAllowed:
		return fmt.Sprintf("✅ *Approved* \\(always allow `%s`\\)", escapeCode(tool))
	case messenger.StatusTimedOut:
		return "⏰ *Timed out* \\- denied"
	default:
		return "❌ *Denied*"
	}
}

// renderResolved rebuilds the prompt body with its outcome appended; used
// when editing the original message after resolution.
func renderResolved(prompt *messenger.Prompt, status messenger.Status) string {
	return renderPrompt(prompt) + "\n\n" + statusLine(status, prompt.Tool)
}

// ackText is the short toast shown after a button press.
func ackText(action messenger.Action, tool string) string {
	switch action {
	case messenger.ActionApprove:
		return "Approved"
	case messenger.ActionAlwaysAllow:
		return fmt.Sprintf("Always allowing %s", tool)
	default:
		return "Denied"
	}
}
