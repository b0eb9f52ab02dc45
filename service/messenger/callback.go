package messenger

import "strings"

// callbackSeparator delimits the fields of an encoded callback payload:
// "<requestID>:<action>" or "<requestID>:always_allow:<tool>".
const callbackSeparator = ":"

// Callback is a parsed button payload.
type Callback struct {
	RequestID string
	Action    Action
	Tool      string
}

// EncodeCallback builds the payload embedded in an action button. The tool
// name is carried only for the always-allow action so the listener can
// persist it without re-loading the request.
func EncodeCallback(requestID string, action Action, tool string) string {
	parts := []string{requestID, string(action)}
	if action == ActionAlwaysAllow && tool != "" {
		parts = append(parts, tool)
	}
	return strings.Join(parts, callbackSeparator)
}

// ParseCallback decodes a button payload. It returns false for payloads with
// too few fields or an unknown action. Matching a parsed RequestID against an
// outstanding request must always use full string equality – identifiers that
// merely share a prefix are distinct.
func ParseCallback(data string) (*Callback, bool) {
	parts := strings.SplitN(data, callbackSeparator, 3)
	if len(parts) < 2 {
		return nil, false
	}
	action := Action(parts[1])
	switch action {
	case ActionApprove, ActionDeny, ActionAlwaysAllow:
	default:
		return nil, false
	}
	ret := &Callback{RequestID: parts[0], Action: action}
	if len(parts) == 3 {
		ret.Tool = parts[2]
	}
	return ret, true
}
