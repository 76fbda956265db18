package vscdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hindsight-cli/internal/adapters/driven/pool"
	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// writeStateDB creates a state.vscdb with one ItemTable row in dir.
func writeStateDB(t *testing.T, dir, key, value string) string {
	t.Helper()

	path := filepath.Join(dir, DBName)
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, ?)`, key, value)
	require.NoError(t, err)
	return path
}

func testPool(t *testing.T) *pool.SQLitePool {
	t.Helper()

	p := pool.New(domain.PoolSettings{
		MaxPerPath:     2,
		AcquireTimeout: time.Second,
		ReadOnly:       true,
	})
	t.Cleanup(func() { p.Close() })
	return p
}

func TestStorageRoot(t *testing.T) {
	root, err := StorageRoot("Cursor")
	require.NoError(t, err)
	assert.Contains(t, root, "Cursor")
	assert.Equal(t, "workspaceStorage", filepath.Base(root))
}

func TestLocations(t *testing.T) {
	root := t.TempDir()

	withDB := filepath.Join(root, "b2c4")
	require.NoError(t, os.MkdirAll(withDB, 0700))
	writeStateDB(t, withDB, "k", "v")

	alsoWithDB := filepath.Join(root, "a1f3")
	require.NoError(t, os.MkdirAll(alsoWithDB, 0700))
	writeStateDB(t, alsoWithDB, "k", "v")

	// A directory without a database and a stray file are both ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0600))

	dirs, err := Locations(root)
	require.NoError(t, err)
	assert.Equal(t, []string{alsoWithDB, withDB}, dirs, "results are sorted")
}

func TestLocations_MissingRoot(t *testing.T) {
	dirs, err := Locations(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestReadValue(t *testing.T) {
	dir := t.TempDir()
	path := writeStateDB(t, dir, "chat.data", `{"tabs":[]}`)
	p := testPool(t)

	value, ok, err := ReadValue(context.Background(), p, path, "chat.data")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"tabs":[]}`, string(value))
}

func TestReadValue_MissingKey(t *testing.T) {
	dir := t.TempDir()
	path := writeStateDB(t, dir, "other", "v")
	p := testPool(t)

	_, ok, err := ReadValue(context.Background(), p, path, "chat.data")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadValue_MissingDatabase(t *testing.T) {
	p := testPool(t)

	_, _, err := ReadValue(context.Background(), p, filepath.Join(t.TempDir(), DBName), "k")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceUnavailable))
}

func TestWorkspaceFolder(t *testing.T) {
	dir := t.TempDir()
	meta := `{"folder":"file:///Users/dev/my%20app"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace.json"), []byte(meta), 0600))

	folder, ok := WorkspaceFolder(dir)
	require.True(t, ok)
	assert.Equal(t, "/Users/dev/my app", folder)
}

func TestWorkspaceFolder_Missing(t *testing.T) {
	_, ok := WorkspaceFolder(t.TempDir())
	assert.False(t, ok)
}

func TestWorkspaceFolder_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace.json"), []byte("not json"), 0600))

	_, ok := WorkspaceFolder(dir)
	assert.False(t, ok)
}

func TestFolderPath(t *testing.T) {
	assert.Equal(t, "/home/dev/proj", FolderPath("file:///home/dev/proj"))
	assert.Equal(t, "/plain/path", FolderPath("/plain/path"))
}
