package domain

import "time"

// ServerSnapshot is the unit persisted to the snapshot cache and the unit rendered.
type ServerSnapshot struct {
	Details ServerDetails `json:"details"`
	Usage   ResourceUsage `json:"usage"`

	// ObservedAtMillis is the unix time in milliseconds the snapshot was
	// produced (fetched, or synthesized from cache).
	ObservedAtMillis int64 `json:"observed_at_millis"`
}

// ObservedAt returns ObservedAtMillis as a time.Time.
func (s ServerSnapshot) ObservedAt() time.Time {
	return time.UnixMilli(s.ObservedAtMillis)
}

// AsMissing returns a copy of the snapshot showing the server as down at now.
// Details are kept, usage is zeroed.
func (s ServerSnapshot) AsMissing(now time.Time) ServerSnapshot {
	return ServerSnapshot{
		Details:          s.Details,
		Usage:            MissingUsage(),
		ObservedAtMillis: now.UnixMilli(),
	}
}

// CacheEntry is what the snapshot cache keeps per tracked server.
type CacheEntry struct {
	// ─────────────────────────────
	// Last known good observation
	// ─────────────────────────────

	// Snapshot is overwritten on every successful fetch and left untouched
	// when a fetch fails.
	Snapshot ServerSnapshot `json:"snapshot"`

	// ─────────────────────────────
	// Transition bookkeeping
	// ─────────────────────────────

	// LastState is the state rendered for this server in the previous
	// cycle. It moves to missing on a failed fetch even though Snapshot
	// does not, so repeated failures compare missing against missing.
	LastState State `json:"last_state"`

	UpdatedAt time.Time `json:"updated_at"`
}

// RenderInstruction asks the renderer to draw one tracked server.
type RenderInstruction struct {
	ServerID string
	Snapshot ServerSnapshot
}
