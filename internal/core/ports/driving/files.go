package driving

import (
	"context"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// FileService ranks project files by contextual relevance.
type FileService interface {
	// Rank walks the project root and scores each file on type,
	// location, modification recency and commit activity.
	Rank(ctx context.Context, req domain.RankRequest) (*domain.RankResult, error)
}
