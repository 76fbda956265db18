package driven

import (
	"context"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// HistorySource reads conversation history from one developer tool.
// Each tool (claude, cursor, windsurf) implements this interface against
// its own on-disk storage format.
type HistorySource interface {
	// Tool returns the tool this source reads.
	Tool() domain.Tool

	// Locate discovers the tool's storage locations on this machine.
	// A tool that is not installed returns an empty slice and nil error.
	Locate(ctx context.Context) ([]domain.SourceLocation, error)

	// Parse reads the conversations stored at one location.
	// Records that cannot be decoded are skipped, not fatal: a partial
	// result with nil error is the normal outcome for damaged history.
	// Returns domain.ErrSourceUnavailable when the location itself
	// cannot be opened.
	Parse(ctx context.Context, loc domain.SourceLocation) ([]domain.Conversation, error)
}
