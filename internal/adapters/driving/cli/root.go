// Package cli implements the hindsight command-line interface.
// Commands are thin: they parse flags, call the composed services and
// format the result. All behaviour lives behind the driving ports.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// version is the build version, injected by SetVersion.
var version = "dev"

// Composed services, injected by SetServices before Execute runs.
var (
	recallService   driving.RecallService
	fileService     driving.FileService
	statusService   driving.StatusService
	settingsService driving.SettingsService
	configStore     driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hindsight",
	Short: "Recall prior AI assistant conversations and rank project files",
	Long: `Hindsight gives coding assistants a memory of this machine.

It aggregates conversation history from Claude Code, Cursor and Windsurf,
filters and ranks it on demand, and scores project files by contextual
relevance. Everything is read locally; no data leaves the machine.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Services aggregates the driving ports the commands call.
type Services struct {
	Recall   driving.RecallService
	Files    driving.FileService
	Status   driving.StatusService
	Settings driving.SettingsService
	Config   driven.ConfigStore
}

// SetServices injects the composed services. main calls this once before
// Execute; tests swap individual entries.
func SetServices(s Services) {
	recallService = s.Recall
	fileService = s.Files
	statusService = s.Status
	settingsService = s.Settings
	configStore = s.Config
}

// SetVersion records the build version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under ctx, so signal cancellation
// reaches long-running commands like serve.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
