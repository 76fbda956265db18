package services

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hindsight-cli/internal/adapters/driven/cache"
	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
)

// mockGit implements driven.GitActivity for testing.
type mockGit struct {
	available bool
	activity  map[string]driven.FileActivity
	err       error
	calls     atomic.Int64
}

func (m *mockGit) Available() bool {
	return m.available
}

func (m *mockGit) Activity(_ context.Context, _ string, _ int) (map[string]driven.FileActivity, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.activity, nil
}

// writeProjectFile creates a file under root with its modification time
// pushed into the past by age.
func writeProjectFile(t *testing.T, root, rel string, age time.Duration) {
	t.Helper()

	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("content of "+rel), 0o644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(p, mtime, mtime))
}

// scaffoldProject builds a small project tree with controlled ages.
func scaffoldProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeProjectFile(t, root, "src/core.py", 10*time.Minute)
	writeProjectFile(t, root, "notes.txt", 10*time.Minute)
	writeProjectFile(t, root, "src/util.py", 20*24*time.Hour)
	writeProjectFile(t, root, "docs/guide.md", 5*24*time.Hour)
	writeProjectFile(t, root, "main.go", 2*time.Hour)
	writeProjectFile(t, root, "node_modules/lib/index.js", time.Hour)
	writeProjectFile(t, root, ".hidden/secret.txt", time.Hour)
	return root
}

func newFileService(t *testing.T, git driven.GitActivity) (*FileService, *cache.Store) {
	t.Helper()

	settings := testSettings()
	metaCache := cache.New(settings.MetadataCache)
	return NewFileService(git, metaCache, settings), metaCache
}

func paths(records []domain.FileRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path
	}
	return out
}

func TestFileService_SourceOutranksNotes(t *testing.T) {
	root := scaffoldProject(t)
	svc, _ := newFileService(t, nil)

	result, err := svc.Rank(context.Background(), domain.RankRequest{Root: root, WithScores: true})
	require.NoError(t, err)

	got := paths(result.Files)
	require.Contains(t, got, "src/core.py")
	require.Contains(t, got, "notes.txt")

	var core, notes int
	for i, p := range got {
		switch p {
		case "src/core.py":
			core = i
		case "notes.txt":
			notes = i
		}
	}
	assert.Less(t, core, notes, "equal-age source file must outrank prose")
}

func TestFileService_IgnoresConfiguredGlobsAndHiddenDirs(t *testing.T) {
	root := scaffoldProject(t)
	svc, _ := newFileService(t, nil)

	result, err := svc.Rank(context.Background(), domain.RankRequest{Root: root, WithScores: true})
	require.NoError(t, err)

	got := paths(result.Files)
	assert.NotContains(t, got, "node_modules/lib/index.js")
	assert.NotContains(t, got, ".hidden/secret.txt")
}

func TestFileService_ExtensionFilter(t *testing.T) {
	root := scaffoldProject(t)
	svc, _ := newFileService(t, nil)

	result, err := svc.Rank(context.Background(), domain.RankRequest{
		Root:       root,
		Extensions: []string{"py"},
		WithScores: true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Files)
	for _, rec := range result.Files {
		assert.Equal(t, ".py", filepath.Ext(rec.Path))
	}
	assert.Equal(t, 2, result.Summary.Walked)
}

func TestFileService_MaxFilesTruncates(t *testing.T) {
	root := scaffoldProject(t)
	svc, _ := newFileService(t, nil)

	result, err := svc.Rank(context.Background(), domain.RankRequest{
		Root:       root,
		MaxFiles:   2,
		WithScores: true,
	})
	require.NoError(t, err)

	assert.Len(t, result.Files, 2)
	assert.Greater(t, result.Summary.Walked, 2, "walked counts candidates before truncation")
}

func TestFileService_NoScoresKeepsWalkOrder(t *testing.T) {
	root := scaffoldProject(t)
	svc, _ := newFileService(t, nil)

	result, err := svc.Rank(context.Background(), domain.RankRequest{Root: root})
	require.NoError(t, err)

	assert.False(t, result.Summary.Scored)
	assert.Equal(t,
		[]string{"docs/guide.md", "main.go", "notes.txt", "src/core.py", "src/util.py"},
		paths(result.Files))
	for _, rec := range result.Files {
		assert.Nil(t, rec.Score)
		assert.Empty(t, rec.Tier)
	}
}

func TestFileService_FastModeNeverCallsGit(t *testing.T) {
	root := scaffoldProject(t)
	git := &mockGit{available: true, activity: map[string]driven.FileActivity{
		"src/core.py": {Commits: 5, LastCommit: time.Now().Add(-time.Hour)},
	}}
	svc, _ := newFileService(t, git)

	result, err := svc.Rank(context.Background(), domain.RankRequest{
		Root:       root,
		WithScores: true,
		Fast:       true,
	})
	require.NoError(t, err)

	assert.Zero(t, git.calls.Load(), "fast mode must not shell out")
	assert.False(t, result.Summary.GitAvailable)
	assert.False(t, result.Summary.Scored)
	for _, rec := range result.Files {
		assert.NotNil(t, rec.Score, "fast mode still scores from in-memory signals")
	}
}

func TestFileService_GitFailureRecovered(t *testing.T) {
	root := scaffoldProject(t)
	git := &mockGit{available: true, err: domain.ErrScoringSignalUnavailable}
	svc, _ := newFileService(t, git)

	result, err := svc.Rank(context.Background(), domain.RankRequest{Root: root, WithScores: true})

	require.NoError(t, err, "a missing repository must degrade, not fail")
	assert.False(t, result.Summary.GitAvailable)
	assert.True(t, result.Summary.Scored)
}

func TestFileService_CommitActivityBoosts(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "src/quiet.py", time.Hour)
	writeProjectFile(t, root, "src/busy.py", time.Hour)

	git := &mockGit{available: true, activity: map[string]driven.FileActivity{
		"src/busy.py": {Commits: 5, LastCommit: time.Now().Add(-time.Hour)},
	}}
	svc, _ := newFileService(t, git)

	result, err := svc.Rank(context.Background(), domain.RankRequest{Root: root, WithScores: true})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.True(t, result.Summary.GitAvailable)
	assert.Equal(t, "src/busy.py", result.Files[0].Path,
		"commit activity must outweigh the otherwise identical signals")
	assert.Equal(t, 5, result.Files[0].Commits)
}

func TestFileService_MissingRoot(t *testing.T) {
	svc, _ := newFileService(t, nil)

	_, err := svc.Rank(context.Background(), domain.RankRequest{Root: "/does/not/exist"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestFileService_RootNotADirectory(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "plain.txt", time.Hour)
	svc, _ := newFileService(t, nil)

	_, err := svc.Rank(context.Background(), domain.RankRequest{
		Root: filepath.Join(root, "plain.txt"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFileService_TiersAssigned(t *testing.T) {
	root := scaffoldProject(t)
	svc, _ := newFileService(t, nil)

	result, err := svc.Rank(context.Background(), domain.RankRequest{Root: root, WithScores: true})
	require.NoError(t, err)

	for _, rec := range result.Files {
		assert.NotEmpty(t, rec.Tier)
	}
}

func TestFileService_CachesListings(t *testing.T) {
	root := scaffoldProject(t)
	svc, metaCache := newFileService(t, nil)

	_, err := svc.Rank(context.Background(), domain.RankRequest{Root: root, WithScores: true})
	require.NoError(t, err)
	_, err = svc.Rank(context.Background(), domain.RankRequest{Root: root, WithScores: true})
	require.NoError(t, err)

	stats := metaCache.Stats()
	assert.GreaterOrEqual(t, stats.Hits, uint64(1), "second rank must reuse the cached listing")
}
