package discord

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

// truncate limits text by runes so a multibyte character is never split
// at the boundary.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// renderPrompt builds the Discord-markdown body of a permission request.
func renderPrompt(prompt *messenger.Prompt) string {
	var b strings.Builder
	b.WriteString("🔐 **Permission Request**\n\n")
	if prompt.Hostname != "" {
		fmt.Fprintf(&b, "Host: `%s`\n", prompt.Hostname)
	}
	fmt.Fprintf(&b, "Tool: `%s`\n", prompt.Tool)

	fields := prompt.InputFields()
	switch prompt.Tool {
	case "Bash":
		if command, ok := fields["command"].(string); ok && command != "" {
			fmt.Fprintf(&b, "\nCommand:\n```\n%s\n```", truncate(command, maxInputLen))
		}
	case "Edit", "Write", "MultiEdit":
		if path, ok := fields["file_path"].(string); ok && path != "" {
			fmt.Fprintf(&b, "File: `%s`\n", path)
		}
		if old, ok := fields["old_string"].(string); ok && old != "" {
			fmt.Fprintf(&b, "\nOld:\n```\n%s\n```", truncate(old, maxSnippetLen))
		}
		if replacement, ok := fields["new_string"].(string); ok && replacement != "" {
			fmt.Fprintf(&b, "\nNew:\n```\n%s\n```", truncate(replacement, maxSnippetLen))
		} else if content, ok := fields["content"].(string); ok && content != "" {
			fmt.Fprintf(&b, "\nContent:\n```\n%s\n```", truncate(content, maxSnippetLen))
		}
	default:
		if len(fields) > 0 {
			raw, err := json.MarshalIndent(fields, "", "  ")
			if err == nil {
				fmt.Fprintf(&b, "\nInput:\n```\n%s\n```", truncate(string(raw), maxInputLen))
			}
		}
	}
	return b.String()
}

func renderAutoApproved(prompt *messenger.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **Auto-approved**: `%s`", prompt.Tool)
	if prompt.Hostname != "" {
		fmt.Fprintf(&b, " on `%s`", prompt.Hostname)
	}
	return b.String()
}

func statusLine(status messenger.Status, tool string) string {
	switch status {
	case messenger.StatusApproved:
		return "✅ **Approved**"
	case messenger.StatusAlwaysAllowed:
		return fmt.Sprintf("✅ **Approved** (always allow `%s`)", tool)
	case messenger.StatusTimedOut:
		return "⏰ **Timed out** - denied"
	default:
		return "❌ **Denied**"
	}
}

func renderResolved(prompt *messenger.Prompt, status messenger.Status) string {
	return renderPrompt(prompt) + "\n\n" + statusLine(status, prompt.Tool)
}
