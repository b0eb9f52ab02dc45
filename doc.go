// Package hookgate mediates tool invocation permissions for coding agent
// sessions. A hook invocation describes the tool call on stdin; hookgate
// publishes it to a messenger (Telegram or Discord), waits for a button
// press correlated by request identifier, and writes an allow or deny
// decision to stdout. Unanswered requests deny after a bounded timeout, and
// per-tool always-allow preferences persist across sessions.
package hookgate
