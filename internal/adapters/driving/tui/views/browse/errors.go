package browse

import "errors"

// Error definitions for the browse view.
var (
	// ErrNoRecallService indicates that no recall service was provided.
	ErrNoRecallService = errors.New("recall service is required")
)
