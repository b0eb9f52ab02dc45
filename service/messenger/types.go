package messenger

import "encoding/json"

// Action is the choice a human can take on a published prompt.
type Action string

const (
	ActionApprove     Action = "allow"
	ActionDeny        Action = "deny"
	ActionAlwaysAllow Action = "always_allow"
)

// Status is the terminal outcome rendered into an edited prompt.
type Status string

const (
	StatusApproved      Status = "approved"
	StatusDenied        Status = "denied"
	StatusAlwaysAllowed Status = "always_allowed"
	StatusTimedOut      Status = "timed_out"
)

// Prompt describes a single permission request to display. Input carries the
// raw tool input so platform renderers can pick tool-specific fields.
type Prompt struct {
	RequestID string
	Tool      string
	Input     json.RawMessage
	Hostname  string
}

// InputFields decodes the prompt input into a generic map; it returns an
// empty map when the input is absent or not an object.
func (p *Prompt) InputFields() map[string]interface{} {
	fields := map[string]interface{}{}
	if len(p.Input) == 0 {
		return fields
	}
	_ = json.Unmarshal(p.Input, &fields)
	return fields
}

// Reply is the asynchronous answer to a published prompt.
type Reply struct {
	RequestID string
	Action    Action
	Tool      string // populated when Action == ActionAlwaysAllow
}

// Handle identifies a delivered message so it can be edited later. Both
// fields are platform-scoped opaque values.
type Handle struct {
	ChatID    string
	MessageID string
}
