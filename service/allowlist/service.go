package allowlist

import "context"

// Store keeps the set of tool identifiers that are pre-approved and therefore
// bypass interactive confirmation.
type Store interface {
	// IsAllowed reports whether tool is currently in the set. It never fails;
	// an unreadable backing store reads as the empty set.
	IsAllowed(ctx context.Context, tool string) bool

	// Add inserts tool into the set and persists it before returning.
	// Adding an existing member is a no-op.
	Add(ctx context.Context, tool string) error

	// Remove deletes tool from the set. Removing an absent member is a no-op.
	Remove(ctx context.Context, tool string) error

	// List returns a snapshot of the current members.
	List(ctx context.Context) []string

	// Clear resets the set to empty, persisted.
	Clear(ctx context.Context) error
}
