// Package hook implements the stdin/stdout contract between the coding agent
// and the permission mediator. The agent pipes a JSON description of the tool
// invocation to stdin and reads the decision from stdout; anything that goes
// wrong on the way maps to a deny.
package hook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hookgate/hookgate/service/approval"
)

// eventName identifies the hook event in the output envelope.
const eventName = "PermissionRequest"

// Input is the tool invocation description read from stdin.
type Input struct {
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

// Output is the decision envelope written to stdout.
type Output struct {
	HookSpecificOutput SpecificOutput `json:"hookSpecificOutput"`
}

// SpecificOutput nests the decision under the event it answers.
type SpecificOutput struct {
	HookEventName string   `json:"hookEventName"`
	Decision      Decision `json:"decision"`
}

// Decision carries the verdict in the field name the agent expects.
type Decision struct {
	Behavior string `json:"behavior"`
}

// ParseInput decodes a tool invocation from r.
func ParseInput(r io.Reader) (*Input, error) {
	var input Input
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to parse hook input: %w", err)
	}
	return &input, nil
}

// NewOutput wraps a verdict in the output envelope. Anything other than an
// explicit allow encodes as deny.
func NewOutput(verdict approval.Verdict) *Output {
	behavior := string(approval.VerdictDeny)
	if verdict == approval.VerdictAllow {
		behavior = string(approval.VerdictAllow)
	}
	return &Output{
		HookSpecificOutput: SpecificOutput{
			HookEventName: eventName,
			Decision:      Decision{Behavior: behavior},
		},
	}
}

// WriteOutput encodes the verdict envelope to w.
func WriteOutput(w io.Writer, verdict approval.Verdict) error {
	if err := json.NewEncoder(w).Encode(NewOutput(verdict)); err != nil {
		return fmt.Errorf("failed to write hook output: %w", err)
	}
	return nil
}
