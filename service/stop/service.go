// Package stop turns a session stop event into a completion notice. The
// transcript referenced by the event supplies a short summary when its last
// assistant message can be recovered.
package stop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/viant/afs"

	"github.com/hookgate/hookgate/service/messenger"
)

// maxSummaryLen caps the transcript excerpt included in the notice.
const maxSummaryLen = 300

// Input is the stop event read from stdin. StopHookActive marks a
// continuation triggered by a previous stop hook; notifying on those would
// loop.
type Input struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cwd            string `json:"cwd"`
	StopHookActive bool   `json:"stop_hook_active"`
}

// ParseInput decodes a stop event from r.
func ParseInput(r io.Reader) (*Input, error) {
	var input Input
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to parse stop input: %w", err)
	}
	return &input, nil
}

// ProjectName derives a display name from the working directory.
func (i *Input) ProjectName() string {
	if name := filepath.Base(i.Cwd); name != "." && name != string(filepath.Separator) {
		return name
	}
	return "Unknown"
}

// Service renders stop events and sends them over a messenger.
type Service struct {
	fs       afs.Service
	channel  messenger.Messenger
	hostname string
	logger   *slog.Logger
}

// New creates a stop notifier for the supplied messenger.
func New(channel messenger.Messenger, options ...Option) *Service {
	s := &Service{
		fs:      afs.New(),
		channel: channel,
		logger:  slog.Default(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Notify sends a completion notice for the event. Continuations are skipped
// to avoid notification loops; transcript problems degrade to a notice
// without a summary.
func (s *Service) Notify(ctx context.Context, input *Input) error {
	if input.StopHookActive {
		s.logger.Debug("skipping continuation stop event", "sessionID", input.SessionID)
		return nil
	}
	lines := []string{
		"✅ Job Completed",
	}
	if s.hostname != "" {
		lines = append(lines, "🖥 Host: "+s.hostname)
	}
	lines = append(lines, "📁 Project: "+input.ProjectName())
	if summary := s.lastAssistantMessage(ctx, input.TranscriptPath); summary != "" {
		lines = append(lines, "", "Summary:", truncate(summary, maxSummaryLen))
	}
	return s.channel.Notify(ctx, strings.Join(lines, "\n"))
}

// lastAssistantMessage scans the JSONL transcript for the final assistant
// text block. Missing or unreadable transcripts and malformed lines are
// tolerated; the summary is optional.
func (s *Service) lastAssistantMessage(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}
	if ok, _ := s.fs.Exists(ctx, path); !ok {
		return ""
	}
	data, err := s.fs.DownloadWithURL(ctx, path)
	if err != nil {
		s.logger.Warn("failed to read transcript", "path", path, "error", err)
		return ""
	}
	var last string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry transcriptEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Type != "assistant" || entry.Message == nil {
			continue
		}
		for _, block := range entry.Message.Content {
			if block.Type == "text" && block.Text != "" {
				last = block.Text
			}
		}
	}
	return last
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

type transcriptEntry struct {
	Type    string             `json:"type"`
	Message *transcriptMessage `json:"message"`
}

type transcriptMessage struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
