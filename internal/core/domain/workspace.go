package domain

import (
	"path/filepath"
	"strings"
)

// Workspace is a tool-specific storage scope mapped, where possible, to a
// project root. Tools store history under hashed or encoded directory names;
// the adapter resolves those back to a real path on a best-effort basis.
type Workspace struct {
	// StorageDir is the tool's on-disk locator: a hashed workspaceStorage
	// directory, or an encoded project path for session-file tools.
	StorageDir string

	// ProjectRoot is the resolved project path, empty when resolution failed.
	ProjectRoot string
}

// Matches reports whether this workspace refers to the given project root.
// Comparison is by cleaned path; an unresolved workspace matches nothing.
func (w Workspace) Matches(root string) bool {
	if w.ProjectRoot == "" || root == "" {
		return false
	}
	return filepath.Clean(w.ProjectRoot) == filepath.Clean(root)
}

// Contains reports whether the given path lives under the workspace root.
func (w Workspace) Contains(path string) bool {
	if w.ProjectRoot == "" || path == "" {
		return false
	}
	root := filepath.Clean(w.ProjectRoot)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// SourceKind distinguishes how a storage location must be read.
type SourceKind string

// Storage location kinds.
const (
	// SourceKindDatabase is an embedded SQLite file read through the pool.
	SourceKindDatabase SourceKind = "database"

	// SourceKindSessionFile is a flat session file read directly.
	SourceKindSessionFile SourceKind = "session_file"
)

// SourceLocation is one discovered piece of a tool's on-disk storage.
type SourceLocation struct {
	// Tool is the owning assistant.
	Tool Tool

	// Path is the absolute location of the database or session file.
	Path string

	// Kind says whether Path is a database or a flat session file.
	Kind SourceKind

	// Workspace is the storage scope this location belongs to.
	Workspace Workspace
}
