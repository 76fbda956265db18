package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowseCmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "browse" {
			found = true
			break
		}
	}
	assert.True(t, found, "browse command should be registered")
}

func TestBrowseCmd_ShortDescription(t *testing.T) {
	assert.Equal(t, "Browse recalled conversations interactively", browseCmd.Short)
}

func TestBrowseCmd_LongDescription(t *testing.T) {
	assert.Contains(t, browseCmd.Long, "interactive terminal browser")
	assert.Contains(t, browseCmd.Long, "Controls:")
}

func TestBrowseCmd_HelpOutput(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"browse", "--help"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "interactive terminal browser")
	assert.Contains(t, output, "Controls:")
}
