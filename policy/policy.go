// Package policy provides a simple, optional per-tool gate that can be
// attached to a decision via context. Engines that do not embed a Policy in
// their context keep the default "ask" behaviour.

package policy

import (
	"context"
	"strings"
)

// Decision modes recognised by the coordinator.
const (
	ModeAsk  = "ask"  // ask the remote human (default)
	ModeAuto = "auto" // approve everything without asking
	ModeDeny = "deny" // reject everything without asking
)

// Policy represents static approval settings for the current invocation.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList, BlockList filter by tool name regardless of Mode.
//
// A nil *Policy means "ask for everything" and is therefore the zero-cost
// default.
type Policy struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// Allows reports whether tool passes the static allow list. An empty list
// allows nothing here – the persistent always-allow store is the positive
// gate; this list only adds config-declared exemptions.
func (p *Policy) Allows(tool string) bool {
	if p == nil {
		return false
	}
	normalized := strings.ToLower(tool)
	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// Blocks reports whether tool is explicitly blocked. BlockList has priority
// over every other gate.
func (p *Policy) Blocks(tool string) bool {
	if p == nil {
		return false
	}
	normalized := strings.ToLower(tool)
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return true
		}
	}
	return false
}

// EffectiveMode returns the configured mode, defaulting to ask.
func (p *Policy) EffectiveMode() string {
	if p == nil || p.Mode == "" {
		return ModeAsk
	}
	return strings.ToLower(p.Mode)
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
