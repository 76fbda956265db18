package cursor

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
	"github.com/custodia-labs/hindsight-cli/internal/history/vscdb"
)

const chatFixture = `{"tabs":[
  {"tabId":"tab-1","chatTitle":"Debugging the cache","createdAt":1717236000000,"lastSendTime":1717240000000,"bubbles":[{"type":"user","text":"Cache grows unbounded"},{"type":"ai","text":"Check the eviction loop"},{"type":"system","text":"ignored"}]},
  {"bubbles":[{"type":"user","text":"Quick question about slices"}]},
  {"bubbles":"damaged"},
  {"tabId":"empty","bubbles":[]}
]}`

// writeWorkspace creates one workspace storage directory with a chat-state
// database and optional workspace.json.
func writeWorkspace(t *testing.T, root, hash, chatData, folderURI string) string {
	t.Helper()

	dir := filepath.Join(root, hash)
	require.NoError(t, os.MkdirAll(dir, 0700))

	db, err := sql.Open("sqlite", filepath.Join(dir, vscdb.DBName))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value BLOB)`)
	require.NoError(t, err)
	if chatData != "" {
		_, err = db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, ?)`, chatDataKey, chatData)
		require.NoError(t, err)
	}

	if folderURI != "" {
		meta := `{"folder":"` + folderURI + `"}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace.json"), []byte(meta), 0600))
	}
	return dir
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

func TestSource_Tool(t *testing.T) {
	assert.Equal(t, domain.ToolCursor, New(testPool(t), "").Tool())
}

func TestSource_Locate(t *testing.T) {
	root := t.TempDir()
	writeWorkspace(t, root, "a1f3", chatFixture, "file:///home/dev/webapp")
	writeWorkspace(t, root, "b2c4", chatFixture, "")

	locs, err := New(testPool(t), root).Locate(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)

	assert.Equal(t, domain.ToolCursor, locs[0].Tool)
	assert.Equal(t, domain.SourceKindDatabase, locs[0].Kind)
	assert.Equal(t, filepath.Join(root, "a1f3", vscdb.DBName), locs[0].Path)
	assert.Equal(t, "/home/dev/webapp", locs[0].Workspace.ProjectRoot)
	assert.Equal(t, "", locs[1].Workspace.ProjectRoot)
}

func TestSource_Locate_MissingRoot(t *testing.T) {
	locs, err := New(testPool(t), filepath.Join(t.TempDir(), "absent")).Locate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestSource_Parse(t *testing.T) {
	root := t.TempDir()
	writeWorkspace(t, root, "a1f3", chatFixture, "file:///home/dev/webapp")

	src := New(testPool(t), root)
	locs, err := src.Locate(context.Background())
	require.NoError(t, err)

	convs, err := src.Parse(context.Background(), locs[0])
	require.NoError(t, err)
	require.Len(t, convs, 2, "damaged and empty tabs are dropped")

	first := convs[0]
	assert.Equal(t, "tab-1", first.ID)
	assert.Equal(t, "Debugging the cache", first.Title)
	assert.Equal(t, "/home/dev/webapp", first.Workspace.ProjectRoot)
	assert.Equal(t, time.UnixMilli(1717236000000).UTC(), first.CreatedAt)
	assert.Equal(t, time.UnixMilli(1717240000000).UTC(), first.UpdatedAt)

	// The system bubble is skipped; user and ai bubbles keep their order.
	require.Len(t, first.Messages, 2)
	assert.Equal(t, domain.RoleUser, first.Messages[0].Role)
	assert.Equal(t, "Cache grows unbounded", first.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, first.Messages[1].Role)

	second := convs[1]
	assert.NotEmpty(t, second.ID, "tabs without an id get a synthetic one")
	assert.Equal(t, "Quick question about slices", second.Title)
}

func TestSource_Parse_SyntheticIDIsStable(t *testing.T) {
	root := t.TempDir()
	writeWorkspace(t, root, "a1f3", chatFixture, "")

	src := New(testPool(t), root)
	locs, err := src.Locate(context.Background())
	require.NoError(t, err)

	first, err := src.Parse(context.Background(), locs[0])
	require.NoError(t, err)
	second, err := src.Parse(context.Background(), locs[0])
	require.NoError(t, err)

	assert.Equal(t, first[1].ID, second[1].ID, "synthetic ids are deterministic")
}

func TestSource_Parse_MissingChatKey(t *testing.T) {
	root := t.TempDir()
	writeWorkspace(t, root, "a1f3", "", "")

	src := New(testPool(t), root)
	locs, err := src.Locate(context.Background())
	require.NoError(t, err)

	convs, err := src.Parse(context.Background(), locs[0])
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestSource_Parse_CorruptBlob(t *testing.T) {
	root := t.TempDir()
	writeWorkspace(t, root, "a1f3", "not json", "")

	src := New(testPool(t), root)
	locs, err := src.Locate(context.Background())
	require.NoError(t, err)

	_, err = src.Parse(context.Background(), locs[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
}

func TestSource_Parse_MissingDatabase(t *testing.T) {
	src := New(testPool(t), t.TempDir())
	loc := domain.SourceLocation{
		Tool: domain.ToolCursor,
		Path: filepath.Join(t.TempDir(), vscdb.DBName),
		Kind: domain.SourceKindDatabase,
	}

	_, err := src.Parse(context.Background(), loc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceUnavailable))
}
