package telegram

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/hookgate/hookgate/service/messenger"
)

func TestEscapeMarkdown(t *testing.T) {
	type testCase struct {
		name     string
		input    string
		expected string
	}

	tests := []testCase{{
		name:     "plain text untouched",
		input:    "hello world",
		expected: "hello world",
	}, {
		name:     "specials escaped",
		input:    "a_b*c.d!e",
		expected: `a\_b\*c\.d\!e`,
	}, {
		name:     "path dots escaped",
		input:    "main.go",
		expected: `main\.go`,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, escapeMarkdown(tc.input))
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	type testCase struct {
		name     string
		prompt   *messenger.Prompt
		contains []string
	}

	tests := []testCase{{
		name: "bash shows the command",
		prompt: &messenger.Prompt{
			RequestID: "abc123de",
			Tool:      "Bash",
			Input:     json.RawMessage(`{"command":"rm -rf ./build"}`),
			Hostname:  "devbox",
		},
		contains: []string{"Permission Request", "`devbox`", "`Bash`", "rm -rf ./build"},
	}, {
		name: "edit shows file and both snippets",
		prompt: &messenger.Prompt{
			Tool:  "Edit",
			Input: json.RawMessage(`{"file_path":"main.go","old_string":"foo()","new_string":"bar()"}`),
		},
		contains: []string{"`main.go`", "Old:", "foo()", "New:", "bar()"},
	}, {
		name: "unknown tool falls back to raw input",
		prompt: &messenger.Prompt{
			Tool:  "WebFetch",
			Input: json.RawMessage(`{"url":"https://example.com"}`),
		},
		contains: []string{"`WebFetch`", "Input:", "https://example.com"},
	}, {
		name:     "empty input renders header only",
		prompt:   &messenger.Prompt{Tool: "unknown"},
		contains: []string{"`unknown`"},
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual := renderPrompt(tc.prompt)
			for _, fragment := range tc.contains {
				assert.Contains(t, actual, fragment)
			}
		})
	}
}

func TestRenderPrompt_TruncatesLongCommand(t *testing.T) {
	command := strings.Repeat("x", 600)
	prompt := &messenger.Prompt{
		Tool:  "Bash",
		Input: json.RawMessage(`{"command":"` + command + `"}`),
	}
	actual := renderPrompt(prompt)
	assert.Contains(t, actual, strings.Repeat("x", maxInputLen)+"...")
	assert.NotContains(t, actual, strings.Repeat("x", maxInputLen+1))
}

func TestTruncate_MultibyteBoundary(t *testing.T) {
	// The limit counts runes, not bytes. Multibyte text that exceeds the
	// limit in bytes but not in runes stays intact; a byte slice here
	// would split the trailing é and yield invalid UTF-8.
	text := strings.Repeat("é", 249) + "a" + strings.Repeat("é", 10)
	assert.Equal(t, text, truncate(text, maxInputLen))
	assert.True(t, utf8.ValidString(truncate(text, maxInputLen)))

	long := strings.Repeat("é", maxInputLen+10)
	actual := truncate(long, maxInputLen)
	assert.True(t, utf8.ValidString(actual))
	assert.Equal(t, maxInputLen+3, utf8.RuneCountInString(actual))
	assert.True(t, strings.HasSuffix(actual, "é..."))
}

func TestRenderResolved(t *testing.T) {
	prompt := &messenger.Prompt{Tool: "Bash", Input: json.RawMessage(`{"command":"ls"}`)}

	assert.Contains(t, renderResolved(prompt, messenger.StatusApproved), "Approved")
	assert.Contains(t, renderResolved(prompt, messenger.StatusDenied), "Denied")
	assert.Contains(t, renderResolved(prompt, messenger.StatusTimedOut), "Timed out")

	always := renderResolved(prompt, messenger.StatusAlwaysAllowed)
	assert.Contains(t, always, "always allow")
	assert.Contains(t, always, "Bash")
}
