package driving

import (
	"context"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// RecallService aggregates conversation history across developer tools.
type RecallService interface {
	// Recall runs the full pipeline: locate sources, parse, filter,
	// score and rank. Tools that fail contribute a status entry rather
	// than failing the whole call.
	Recall(ctx context.Context, req domain.RecallRequest) (*domain.RecallResult, error)
}
