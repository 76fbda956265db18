// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Hindsight. It lets AI assistants recall prior conversations and rank
// project files without shelling out to the CLI.
package mcp

import "errors"

// ErrMissingRecallService is returned when the recall service is not provided.
var ErrMissingRecallService = errors.New("mcp: recall service is required")

// ErrMissingFileService is returned when the file service is not provided.
var ErrMissingFileService = errors.New("mcp: file service is required")
