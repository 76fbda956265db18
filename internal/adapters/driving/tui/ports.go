// Package tui provides an interactive terminal user interface for hindsight.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recall aggregates conversation history across tools.
	Recall driving.RecallService

	// Status reports runtime health. Optional; the browser shows tool
	// availability from recall statuses when absent.
	Status driving.StatusService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(recall driving.RecallService, status driving.StatusService) *Ports {
	return &Ports{
		Recall: recall,
		Status: status,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Recall == nil {
		return ErrMissingRecallService
	}
	return nil
}
