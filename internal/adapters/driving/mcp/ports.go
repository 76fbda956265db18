package mcp

import (
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recall aggregates conversation history across tools.
	Recall driving.RecallService

	// Files ranks project files by relevance.
	Files driving.FileService

	// Status reports runtime health. Optional; the status resource reads
	// as empty without it.
	Status driving.StatusService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Recall == nil {
		return ErrMissingRecallService
	}
	if p.Files == nil {
		return ErrMissingFileService
	}
	return nil
}
