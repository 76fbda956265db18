// Package watch invalidates cached conversation batches when tool storage
// changes on disk.
//
// The watcher exists for promptness, not correctness. Cache keys already
// carry the storage's modification time, so without it a changed session
// would surface within the cache TTL anyway; with it the next recall
// re-parses immediately and superseded entries stop occupying budget.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Watcher maps filesystem events under tool storage directories to
// invalidation callbacks. Everything about it is best-effort: a directory
// that cannot be watched is skipped with a log line and recall carries on
// at TTL freshness.
type Watcher struct {
	onChange func(domain.Tool)
	fsw      *fsnotify.Watcher

	mu   sync.Mutex
	dirs map[string]domain.Tool

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a watcher and starts its event loop. onChange is called with
// the owning tool whenever watched storage changes; callers wire it to the
// recall service's invalidation.
func New(onChange func(domain.Tool)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating storage watcher: %w", err)
	}

	w := &Watcher{
		onChange: onChange,
		fsw:      fsw,
		dirs:     make(map[string]domain.Tool),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch locates each source's storage and registers its directories.
func (w *Watcher) Watch(ctx context.Context, sources []driven.HistorySource) {
	for _, source := range sources {
		locs, err := source.Locate(ctx)
		if err != nil {
			logger.Debug("watch: locating %s storage: %v", source.Tool(), err)
			continue
		}
		for _, loc := range locs {
			w.add(loc.Tool, loc.Workspace.StorageDir)
		}
	}
}

func (w *Watcher) add(tool domain.Tool, dir string) {
	if dir == "" {
		return
	}

	w.mu.Lock()
	if _, ok := w.dirs[dir]; ok {
		w.mu.Unlock()
		return
	}
	w.dirs[dir] = tool
	w.mu.Unlock()

	if err := w.fsw.Add(dir); err != nil {
		logger.Debug("watch: %s: %v", dir, err)
		w.mu.Lock()
		delete(w.dirs, dir)
		w.mu.Unlock()
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("storage watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

// handleEvent fires the callback for events that can change parse results.
// Chmod-only events and paths outside the registered directories are
// ignored. Returns the affected tool, for tests.
func (w *Watcher) handleEvent(event fsnotify.Event) (domain.Tool, bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	tool, ok := w.owner(event.Name)
	if !ok {
		return "", false
	}

	logger.Debug("Storage changed under %s, invalidating %s conversations",
		filepath.Dir(event.Name), tool)
	if w.onChange != nil {
		w.onChange(tool)
	}
	return tool, true
}

// owner resolves the tool whose storage directory contains path.
func (w *Watcher) owner(path string) (domain.Tool, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir, tool := range w.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return tool, true
		}
	}
	return "", false
}

// Close stops the event loop and releases the underlying watcher. Safe to
// call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}
