package domain

import "fmt"

// Tool identifies which coding assistant's history produced a record.
// It is a closed set: adapter dispatch switches over it exhaustively.
type Tool string

// Supported history tools.
const (
	// ToolClaude is Claude Code, which stores sessions as line-delimited
	// JSON files under the projects directory.
	ToolClaude Tool = "claude"

	// ToolCursor is Cursor, which stores chat data inside per-workspace
	// state.vscdb SQLite databases.
	ToolCursor Tool = "cursor"

	// ToolWindsurf is Windsurf, which uses the same state.vscdb layout as
	// Cursor with its own key set.
	ToolWindsurf Tool = "windsurf"
)

// AllTools returns every supported tool in stable order.
// The order is alphabetical so callers iterating it get deterministic output.
func AllTools() []Tool {
	return []Tool{ToolClaude, ToolCursor, ToolWindsurf}
}

// IsValid returns true if the tool is recognised.
func (t Tool) IsValid() bool {
	switch t {
	case ToolClaude, ToolCursor, ToolWindsurf:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Tool) String() string {
	return string(t)
}

// Description returns a human-readable display name.
func (t Tool) Description() string {
	switch t {
	case ToolClaude:
		return "Claude Code"
	case ToolCursor:
		return "Cursor"
	case ToolWindsurf:
		return "Windsurf"
	default:
		return "Unknown"
	}
}

// ParseTool converts a string into a Tool, rejecting unknown values.
func ParseTool(s string) (Tool, error) {
	t := Tool(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown tool %q", ErrInvalidInput, s)
	}
	return t, nil
}
