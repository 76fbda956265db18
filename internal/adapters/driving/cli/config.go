package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the settings stored in the config file.

Run without a subcommand to print the effective settings: the documented
defaults overlaid with the config file and any HINDSIGHT_* environment
variables.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configured value",
	Long: `Print the raw value stored in the config file for a key, e.g.
pool.max_per_path or cache.conversations.ttl. Keys not present in the
file report as unset; the effective value may still come from a default
or an environment variable (see 'config show').`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store one configuration value",
	Long: `Store a value in the config file and save it immediately.

Values are typed by shape: true/false become booleans, bare digits become
integers, decimal numbers become floats, everything else is stored as a
string. Durations are strings, e.g. 'adapter.timeout 10s'.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		cmd.Println(configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Println("Effective Settings")
	cmd.Println("==================")
	cmd.Println()

	cmd.Println("[Pool]")
	cmd.Printf("  Max connections per database: %d\n", settings.Pool.MaxPerPath)
	cmd.Printf("  Acquire timeout: %s\n", settings.Pool.AcquireTimeout)
	cmd.Printf("  Read only: %t\n", settings.Pool.ReadOnly)
	cmd.Println()

	cmd.Println("[Conversation cache]")
	cmd.Printf("  Memory ceiling: %s\n", humanBytes(settings.ConversationCache.MaxBytes))
	cmd.Printf("  Item ceiling: %d\n", settings.ConversationCache.MaxItems)
	cmd.Printf("  TTL: %s\n", settings.ConversationCache.TTL)
	cmd.Println()

	cmd.Println("[Metadata cache]")
	cmd.Printf("  Memory ceiling: %s\n", humanBytes(settings.MetadataCache.MaxBytes))
	cmd.Printf("  Item ceiling: %d\n", settings.MetadataCache.MaxItems)
	cmd.Printf("  TTL: %s\n", settings.MetadataCache.TTL)
	cmd.Println()

	cmd.Println("[Adapters]")
	cmd.Printf("  Per-adapter budget: %s\n", settings.Adapter.Timeout)
	cmd.Println()

	cmd.Println("[Git]")
	cmd.Printf("  Command timeout: %s\n", settings.Git.CommandTimeout)
	cmd.Printf("  Rate: %.1f/s\n", settings.Git.RatePerSecond)
	cmd.Printf("  Lookback: %d days\n", settings.Git.LookbackDays)
	cmd.Println()

	cmd.Println("[Files]")
	cmd.Printf("  Ignore globs: %d configured\n", len(settings.Files.IgnoreGlobs))
	for _, glob := range settings.Files.IgnoreGlobs {
		cmd.Printf("    %s\n", glob)
	}

	if configStore != nil {
		cmd.Println()
		cmd.Printf("Config file: %s\n", configStore.Path())
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		cmd.Printf("%s is not set in the config file\n", args[0])
		return nil
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, typedValue(raw)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	// Re-resolve so an invalid combination is reported at set time, not
	// on the next recall.
	if settingsService != nil {
		if _, err := settingsService.Load(); err != nil {
			cmd.Printf("Warning: %v\n", err)
		}
	}

	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

// typedValue parses a command-line value into the type the settings loader
// expects: booleans and numbers by shape, durations and globs as strings.
func typedValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if _, derr := time.ParseDuration(raw); derr != nil {
			return f
		}
	}
	return raw
}
