// Package git reads commit activity through the git CLI. It is an optional
// scoring signal: machines without git, and roots outside a repository,
// degrade to filesystem signals only.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Ensure CLI implements the interface.
var _ driven.GitActivity = (*CLI)(nil)

// CLI shells out to git for commit history. Invocations are throttled so
// concurrent rankings do not stampede the repository.
type CLI struct {
	settings domain.GitSettings
	bucket   *rate.Limiter

	lookupOnce sync.Once
	gitPath    string
	lookupErr  error

	calls atomic.Uint64
}

// New creates a git-backed activity reader.
func New(settings domain.GitSettings) *CLI {
	return &CLI{
		settings: settings,
		bucket:   rate.NewLimiter(rate.Limit(settings.RatePerSecond), 1),
	}
}

// Available reports whether a git binary is on PATH.
func (c *CLI) Available() bool {
	c.lookupOnce.Do(c.lookup)
	return c.lookupErr == nil
}

func (c *CLI) lookup() {
	c.gitPath, c.lookupErr = exec.LookPath("git")
}

// Calls returns how many git invocations have run.
func (c *CLI) Calls() uint64 {
	return c.calls.Load()
}

// Activity returns per-file commit counts and last-commit times for files
// changed within the lookback window. Paths are relative to root.
func (c *CLI) Activity(ctx context.Context, root string, lookbackDays int) (map[string]driven.FileActivity, error) {
	c.lookupOnce.Do(c.lookup)
	if c.lookupErr != nil {
		return nil, fmt.Errorf("git not installed: %w", domain.ErrScoringSignalUnavailable)
	}
	if lookbackDays <= 0 {
		lookbackDays = c.settings.LookbackDays
	}

	if err := c.bucket.Wait(ctx); err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, c.settings.CommandTimeout)
	defer cancel()

	since := fmt.Sprintf("--since=%d.days", lookbackDays)
	cmd := exec.CommandContext(execCtx, c.gitPath,
		"-C", root, "log", since, "--no-merges", "--name-only", "--pretty=format:%ct")
	c.calls.Add(1)

	output, err := cmd.Output()
	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("git log timed out for %s: %w", root, domain.ErrScoringSignalUnavailable)
		}
		logger.Debug("git log failed for %s: %v", root, err)
		return nil, fmt.Errorf("reading git history for %s: %w", root, domain.ErrScoringSignalUnavailable)
	}

	return parseLog(output), nil
}

// parseLog walks `git log --name-only --pretty=format:%ct` output: each
// commit prints its epoch timestamp followed by the paths it touched.
func parseLog(output []byte) map[string]driven.FileActivity {
	activity := make(map[string]driven.FileActivity)

	var current time.Time
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ts, ok := parseEpoch(line); ok {
			current = ts
			continue
		}
		a := activity[line]
		a.Commits++
		if current.After(a.LastCommit) {
			a.LastCommit = current
		}
		activity[line] = a
	}
	return activity
}

// parseEpoch recognises the timestamp lines emitted by format:%ct.
func parseEpoch(line string) (time.Time, bool) {
	if len(line) < 9 || len(line) > 11 {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}
