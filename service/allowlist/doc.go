// Package allowlist defines the persistent always-allow set consulted before
// any interactive permission request is published. Membership is the only
// semantic – no counters, no timestamps.
package allowlist
