// Command hindsight recalls prior AI assistant conversations and ranks
// project files by relevance, over the CLI or as an MCP server.
//
// main is the composition root: every service is constructed here and
// handed down as an explicit dependency. Nothing below this file reaches
// for global state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/hindsight-cli/internal/adapters/driven/cache"
	configfile "github.com/custodia-labs/hindsight-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driven/git"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driven/pool"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driven/watch"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/core/services"
	"github.com/custodia-labs/hindsight-cli/internal/history/claude"
	"github.com/custodia-labs/hindsight-cli/internal/history/cursor"
	"github.com/custodia-labs/hindsight-cli/internal/history/windsurf"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// version is stamped by the build: -ldflags "-X main.version=v0.2.0".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A .env in the working directory can override settings per project;
	// absence is the normal case.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Environment loaded from .env")
	}

	configStore, err := configfile.NewConfigStore(os.Getenv("HINDSIGHT_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Load()
	if err != nil {
		return err
	}

	dbPool := pool.New(settings.Pool)
	defer dbPool.Close()

	convCache := cache.New(settings.ConversationCache)
	metaCache := cache.New(settings.MetadataCache)
	gitActivity := git.New(settings.Git)

	// One source per supported tool. Empty roots select each tool's
	// platform default storage location.
	sources := []driven.HistorySource{
		claude.New(""),
		cursor.New(dbPool, ""),
		windsurf.New(dbPool, ""),
	}

	recallService := services.NewRecallService(sources, convCache, metaCache, settings)
	fileService := services.NewFileService(gitActivity, metaCache, settings)
	statusService := services.NewStatusService(
		version, configStore.Path(), sources, convCache, metaCache, dbPool, gitActivity)

	// The watcher keeps the conversation cache honest while the server
	// runs. Registration does filesystem discovery, so it happens off the
	// command path; one-shot commands exit before it matters.
	watcher, err := watch.New(recallService.InvalidateTool)
	if err != nil {
		logger.Warn("Storage watching disabled: %v", err)
	} else {
		defer watcher.Close()
		go watcher.Watch(ctx, sources)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Recall:   recallService,
		Files:    fileService,
		Status:   statusService,
		Settings: settingsService,
		Config:   configStore,
	})
	return cli.ExecuteContext(ctx)
}
