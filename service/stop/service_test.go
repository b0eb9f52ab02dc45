package stop

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	msgmemory "github.com/hookgate/hookgate/service/messenger/memory"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	assert.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestNotify(t *testing.T) {
	type testCase struct {
		name        string
		input       *Input
		transcript  []string
		expectSent  bool
		contains    []string
		notContains []string
	}

	tests := []testCase{{
		name:  "completion notice with summary",
		input: &Input{SessionID: "s1", Cwd: "/home/user/myproject"},
		transcript: []string{
			`{"type":"user","message":{"content":[{"type":"text","text":"do the thing"}]}}`,
			`{"type":"assistant","message":{"content":[{"type":"text","text":"first answer"}]}}`,
			`{"type":"assistant","message":{"content":[{"type":"text","text":"all done"}]}}`,
		},
		expectSent: true,
		contains:   []string{"Job Completed", "myproject", "Summary:", "all done"},
		notContains: []string{
			"first answer",
			"do the thing",
		},
	}, {
		name:       "missing transcript degrades to notice without summary",
		input:      &Input{Cwd: "/home/user/myproject", TranscriptPath: "/nonexistent/t.jsonl"},
		expectSent: true,
		contains:   []string{"Job Completed", "myproject"},
		notContains: []string{
			"Summary:",
		},
	}, {
		name:  "malformed transcript lines are skipped",
		input: &Input{Cwd: "/tmp/p"},
		transcript: []string{
			`not json at all`,
			`{"type":"assistant","message":{"content":[{"type":"text","text":"kept"}]}}`,
			`{"type":"assistant"`,
		},
		expectSent: true,
		contains:   []string{"kept"},
	}, {
		name:       "continuation is skipped",
		input:      &Input{Cwd: "/tmp/p", StopHookActive: true},
		expectSent: false,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.transcript) > 0 {
				tc.input.TranscriptPath = writeTranscript(t, tc.transcript...)
			}
			channel := msgmemory.New()
			svc := New(channel, WithHostname("devbox"))

			assert.NoError(t, svc.Notify(context.Background(), tc.input))
			notices := channel.Notices()
			if !tc.expectSent {
				assert.Empty(t, notices)
				return
			}
			if !assert.Len(t, notices, 1) {
				return
			}
			for _, fragment := range tc.contains {
				assert.Contains(t, notices[0], fragment)
			}
			for _, fragment := range tc.notContains {
				assert.NotContains(t, notices[0], fragment)
			}
		})
	}
}

func TestNotify_TruncatesLongSummary(t *testing.T) {
	long := strings.Repeat("x", 400)
	path := writeTranscript(t,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"`+long+`"}]}}`)
	channel := msgmemory.New()
	svc := New(channel)

	assert.NoError(t, svc.Notify(context.Background(), &Input{Cwd: "/tmp/p", TranscriptPath: path}))
	if assert.Len(t, channel.Notices(), 1) {
		assert.Contains(t, channel.Notices()[0], strings.Repeat("x", maxSummaryLen)+"...")
		assert.NotContains(t, channel.Notices()[0], strings.Repeat("x", maxSummaryLen+1))
	}
}

func TestParseInput(t *testing.T) {
	actual, err := ParseInput(strings.NewReader(
		`{"session_id":"s1","transcript_path":"/t.jsonl","cwd":"/home/p","stop_hook_active":true}`))
	assert.NoError(t, err)
	assert.Equal(t, "s1", actual.SessionID)
	assert.Equal(t, "/t.jsonl", actual.TranscriptPath)
	assert.True(t, actual.StopHookActive)

	_, err = ParseInput(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestProjectName(t *testing.T) {
	assert.Equal(t, "myproject", (&Input{Cwd: "/home/user/myproject"}).ProjectName())
	assert.Equal(t, "Unknown", (&Input{Cwd: "/"}).ProjectName())
	assert.Equal(t, "Unknown", (&Input{}).ProjectName())
}
