package driven

import (
	"context"
	"time"
)

// GitActivity reads commit activity for files under a repository root.
// Implementations shell out to the git CLI; a machine without git, or a
// root that is not a repository, reports domain.ErrScoringSignalUnavailable.
type GitActivity interface {
	// Available reports whether the git binary can be found at all.
	// Callers use it to skip the signal without paying for a failed run.
	Available() bool

	// Activity returns per-file commit counts and last-commit times for
	// files changed within the lookback window. Paths are relative to
	// root, using forward slashes.
	Activity(ctx context.Context, root string, lookbackDays int) (map[string]FileActivity, error)
}

// FileActivity summarises one file's recent commit history.
type FileActivity struct {
	Commits    int
	LastCommit time.Time
}
