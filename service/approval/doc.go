// Package approval implements the human-in-the-loop permission decision. A
// request is published on a messenger with selectable actions, the service
// waits a bounded time for the correlated reply and resolves a single
// fail-closed verdict.
package approval
