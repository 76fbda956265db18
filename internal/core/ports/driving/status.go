package driving

import (
	"context"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// StatusService reports runtime health for diagnostic surfaces.
type StatusService interface {
	// Status snapshots detected tools, cache occupancy and pool usage.
	Status(ctx context.Context) (*domain.StatusReport, error)
}
