package messenger

import "context"

// ReplyHandler consumes asynchronous replies to previously published prompts.
// Handlers are process-wide: they receive every reply the platform delivers,
// including replies to prompts they did not publish.
type ReplyHandler func(Reply)

// Messenger abstracts a messaging platform capable of showing a permission
// prompt with selectable actions and delivering the human's choice back.
type Messenger interface {
	// Publish sends an actionable permission prompt and returns a handle to
	// the delivered message for later status edits.
	Publish(ctx context.Context, prompt *Prompt) (*Handle, error)

	// NotifyAutoApproved sends a non-interactive notice that a request was
	// approved from the persisted allow-list.
	NotifyAutoApproved(ctx context.Context, prompt *Prompt) error

	// Notify sends a plain informational message.
	Notify(ctx context.Context, text string) error

	// UpdateStatus edits a previously published prompt to reflect the final
	// outcome. Best-effort: failures must not affect the verdict.
	UpdateStatus(ctx context.Context, handle *Handle, prompt *Prompt, status Status) error

	// OnReply registers a process-wide reply listener and returns a function
	// that removes it again.
	OnReply(handler ReplyHandler) (cancel func())

	// Listen runs the platform's receive loop until ctx is cancelled.
	Listen(ctx context.Context) error

	// Platform names the backing platform for logging.
	Platform() string
}
