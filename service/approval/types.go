package approval

import (
	"encoding/json"
	"time"

	"github.com/hookgate/hookgate/internal/clock"
	"github.com/hookgate/hookgate/internal/idgen"
	"github.com/hookgate/hookgate/service/messenger"
)

// Verdict is the binary outcome of a permission decision.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictDeny  Verdict = "deny"
)

// defaultToolName labels requests whose hook input omitted the tool.
const defaultToolName = "unknown"

// Request is an immutable description of a single permission decision. ID is
// the correlation token embedded in the outbound prompt and echoed back in
// the reply; it is the sole mechanism for matching the two.
type Request struct {
	ID        string          `json:"id"`
	Tool      string          `json:"tool"`
	Input     json.RawMessage `json:"input,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewRequest builds a request with a fresh correlation token, applying the
// defaults for absent fields.
func NewRequest(tool string, input json.RawMessage) *Request {
	if tool == "" {
		tool = defaultToolName
	}
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	return &Request{
		ID:        idgen.New(),
		Tool:      tool,
		Input:     input,
		CreatedAt: clock.Now(),
	}
}

// Prompt renders the request for publication on a messenger.
func (r *Request) Prompt(hostname string) *messenger.Prompt {
	return &messenger.Prompt{
		RequestID: r.ID,
		Tool:      r.Tool,
		Input:     r.Input,
		Hostname:  hostname,
	}
}
