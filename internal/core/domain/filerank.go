package domain

import "time"

// PriorityTier buckets a file score against fixed thresholds.
// Tiers are absolute, not relative to the result set, so the same file lands
// in the same tier across calls.
type PriorityTier string

// Priority tiers.
const (
	// TierHigh marks files that should almost certainly be surfaced.
	TierHigh PriorityTier = "high"

	// TierMedium marks files worth surfacing when space allows.
	TierMedium PriorityTier = "medium"

	// TierLow marks files of marginal relevance.
	TierLow PriorityTier = "low"
)

// String returns the string representation.
func (t PriorityTier) String() string {
	return string(t)
}

// FileRecord is one project file with its relevance signals and score.
type FileRecord struct {
	// Path is relative to the ranked root.
	Path string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the filesystem modification time.
	ModTime time.Time

	// LastCommit is the most recent commit touching the file; zero when
	// version-control activity was unavailable or skipped (fast mode).
	LastCommit time.Time

	// Commits is the number of commits touching the file in the lookback
	// window; zero when the signal was skipped.
	Commits int

	// TypeWeight is the extension-derived weight used in the score.
	TypeWeight float64

	// Score is the computed relevance, nil until scored.
	Score *float64

	// Tier is the priority bucket derived from Score.
	Tier PriorityTier
}
