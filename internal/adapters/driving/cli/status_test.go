package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCmd_Use(t *testing.T) {
	assert.Equal(t, "status", statusCmd.Use)
}

func TestStatusCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "hindsight test")
	assert.Contains(t, out, "/home/dev/.claude/projects")
	assert.Contains(t, out, "not detected")
	assert.Contains(t, out, "conversations")
	assert.Contains(t, out, "75.0% hit rate")
}

func TestStatusCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		statusJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)

	var view statusView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "test", view.Version)
	assert.True(t, view.GitAvailable)
	require.Len(t, view.Tools, 3)
	assert.True(t, view.Tools[0].Installed)
	assert.False(t, view.Tools[1].Installed)
	require.Len(t, view.Caches, 1)
	assert.Equal(t, uint64(9), view.Caches[0].Hits)
	assert.NotEmpty(t, view.GeneratedAt)
}

func TestStatusCmd_ServiceNotConfigured(t *testing.T) {
	oldService := statusService
	statusService = nil
	defer func() {
		statusService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status service not configured")
}

func TestStatusCmd_ServiceError(t *testing.T) {
	oldService := statusService
	statusService = &mockStatusService{err: errMockFailure}
	defer func() {
		statusService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status failed")
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "4.0 KiB", humanBytes(4096))
	assert.Equal(t, "1.5 MiB", humanBytes(3<<19))
}
