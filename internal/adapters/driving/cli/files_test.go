package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

func TestFilesCmd_Use(t *testing.T) {
	assert.Equal(t, "files [path]", filesCmd.Use)
}

func TestFilesCmd_Flags(t *testing.T) {
	for _, name := range []string{"max", "ext", "fast", "no-scores", "json"} {
		assert.NotNil(t, filesCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestFilesCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"files"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "internal/watch/watcher.go")
	assert.Contains(t, buf.String(), "0.67")
	assert.Contains(t, buf.String(), "4 commits")
}

func TestFilesCmd_PassesFilters(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := fileService.(*mockFileService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"files", "/tmp/proj", "--max", "20", "--ext", "go,md", "--fast", "--no-scores"})
	defer func() {
		rootCmd.SetArgs(nil)
		filesMax = 0
		filesExts = nil
		filesFast, filesNoScores = false, false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/proj", mock.got.Root)
	assert.Equal(t, 20, mock.got.MaxFiles)
	assert.Equal(t, []string{"go", "md"}, mock.got.Extensions)
	assert.True(t, mock.got.Fast)
	assert.False(t, mock.got.WithScores)
}

func TestFilesCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"files", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		filesJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"files"`)
	assert.Contains(t, buf.String(), `"path": "internal/watch/watcher.go"`)
	assert.Contains(t, buf.String(), `"git_available": true`)
}

func TestFilesCmd_ServiceNotConfigured(t *testing.T) {
	oldService := fileService
	fileService = nil
	defer func() {
		fileService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"files"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "file service not configured")
}

func TestFilesCmd_ServiceError(t *testing.T) {
	oldService := fileService
	fileService = &mockFileService{err: errMockFailure}
	defer func() {
		fileService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"files"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "file ranking failed")
}

func TestOutputFilesText_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputFilesText(rootCmd, &domain.RankResult{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No files found")
}

func TestOutputFilesText_DegradedGitNote(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	score := 0.5
	result := &domain.RankResult{
		Summary: domain.RankSummary{Root: "/p", Walked: 1, Scored: true, GitAvailable: false},
		Files:   []domain.FileRecord{{Path: "main.go", Score: &score}},
	}

	err := outputFilesText(rootCmd, result)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "git activity unavailable")
}

func TestOutputFilesText_UnscoredListing(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	result := &domain.RankResult{
		Summary: domain.RankSummary{Root: "/p", Walked: 2},
		Files:   []domain.FileRecord{{Path: "a.go"}, {Path: "b.go"}},
	}

	err := outputFilesText(rootCmd, result)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "a.go")
	assert.NotContains(t, buf.String(), "0.")
}
