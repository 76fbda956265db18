// Package vscdb reads the chat-state databases written by VS Code derived
// editors. Cursor and Windsurf both persist per-workspace state in a
// state.vscdb SQLite file holding a single key/value ItemTable; the
// interesting values are JSON blobs keyed per feature.
package vscdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
)

// DBName is the chat-state database file name inside each workspace
// storage directory.
const DBName = "state.vscdb"

// StorageRoot returns the platform workspace-storage root for app, e.g.
// ~/Library/Application Support/Cursor/User/workspaceStorage on macOS.
func StorageRoot(app string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support")
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, app, "User", "workspaceStorage"), nil
}

// Locations lists the workspace storage directories under root that
// contain a chat-state database, sorted for deterministic iteration.
// A missing root is a normal empty result.
func Locations(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, DBName)); err == nil {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadValue fetches one key from the ItemTable of the database at path,
// going through the connection pool. A missing key is a normal miss.
func ReadValue(ctx context.Context, pool driven.DatabasePool, path, key string) ([]byte, bool, error) {
	conn, err := pool.Acquire(ctx, path)
	if err != nil {
		return nil, false, err
	}
	defer conn.Release()

	var value []byte
	err = conn.DB().QueryRowContext(ctx, `SELECT value FROM ItemTable WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s from %s: %w", key, path, err)
	}
	return value, true, nil
}

// WorkspaceFolder resolves the project root recorded in the workspace.json
// beside the chat-state database. Best effort: a missing or malformed file
// yields ok=false.
func WorkspaceFolder(storageDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(storageDir, "workspace.json"))
	if err != nil {
		return "", false
	}

	var meta struct {
		Folder string `json:"folder"`
	}
	if err := json.Unmarshal(data, &meta); err != nil || meta.Folder == "" {
		return "", false
	}
	return FolderPath(meta.Folder), true
}

// FolderPath converts a folder URI to a local path.
// Handles file:// URIs and bare paths.
func FolderPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		path := strings.TrimPrefix(uri, "file://")
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
		return path
	}
	return uri
}
