// Package domain defines the core business entities for Hindsight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Conversation: A recorded exchange with an AI coding assistant
//   - Tool: A known assistant whose history can be read
//   - FileRecord: A project file with ranking signals
//   - Settings: Runtime configuration with documented defaults
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
