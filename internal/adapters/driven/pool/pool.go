// Package pool provides bounded, reusable read connections to the SQLite
// databases owned by other developer tools. Handles are pooled per database
// path so repeated recalls do not pay the open cost each time.
package pool

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Ensure SQLitePool implements the interface.
var _ driven.DatabasePool = (*SQLitePool)(nil)

// healthCheckTimeout bounds the probe run when a handle is returned.
const healthCheckTimeout = time.Second

// SQLitePool hands out at most MaxPerPath live handles per canonical
// database path. Each handle wraps a single underlying connection, so the
// pool's own accounting is the only concurrency control in play.
type SQLitePool struct {
	settings domain.PoolSettings

	mu     sync.Mutex
	paths  map[string]*pathPool
	closed bool
	done   chan struct{}
}

// pathPool tracks the handles for one canonical database path.
type pathPool struct {
	path  string
	free  chan *handle
	live  int
	opens uint64
}

// handle is one checked-out connection.
type handle struct {
	db       *sql.DB
	pp       *pathPool
	pool     *SQLitePool
	released atomic.Bool
}

// New creates a pool with the given settings.
func New(settings domain.PoolSettings) *SQLitePool {
	return &SQLitePool{
		settings: settings,
		paths:    make(map[string]*pathPool),
		done:     make(chan struct{}),
	}
}

// Acquire returns a connection to the database at path, reusing an idle
// handle when one exists. At capacity it blocks up to the configured
// acquire timeout before giving up with domain.ErrPoolTimeout.
func (p *SQLitePool) Acquire(ctx context.Context, path string) (driven.PooledConn, error) {
	canonical := canonicalise(path)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, domain.ErrPoolClosed
	}
	pp, ok := p.paths[canonical]
	if !ok {
		pp = &pathPool{
			path: canonical,
			free: make(chan *handle, p.settings.MaxPerPath),
		}
		p.paths[canonical] = pp
	}

	// Reuse an idle handle when one is parked.
	select {
	case h := <-pp.free:
		p.mu.Unlock()
		h.released.Store(false)
		return h, nil
	default:
	}

	if pp.live < p.settings.MaxPerPath {
		pp.live++
		p.mu.Unlock()

		h, err := p.open(ctx, pp)
		if err != nil {
			p.mu.Lock()
			pp.live--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		pp.opens++
		p.mu.Unlock()
		return h, nil
	}
	p.mu.Unlock()

	// At capacity: wait for a handle to come back.
	timer := time.NewTimer(p.settings.AcquireTimeout)
	defer timer.Stop()
	select {
	case h := <-pp.free:
		h.released.Store(false)
		return h, nil
	case <-timer.C:
		return nil, fmt.Errorf("acquiring %s after %s: %w", canonical, p.settings.AcquireTimeout, domain.ErrPoolTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, domain.ErrPoolClosed
	}
}

// Stats returns per-path usage counters keyed by canonical path.
func (p *SQLitePool) Stats() map[string]driven.PoolPathStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]driven.PoolPathStats, len(p.paths))
	for path, pp := range p.paths {
		out[path] = driven.PoolPathStats{
			Live:  pp.live,
			Idle:  len(pp.free),
			Opens: pp.opens,
		}
	}
	return out
}

// Close closes every idle handle and marks the pool closed. Outstanding
// handles are closed as they are released.
func (p *SQLitePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	var firstErr error
	for _, pp := range p.paths {
		for len(pp.free) > 0 {
			h := <-pp.free
			if err := h.db.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
			pp.live--
		}
	}
	return firstErr
}

// open creates a fresh handle for pp. The file is statted first so a
// missing database reports domain.ErrSourceUnavailable rather than an
// opaque driver error on first query.
func (p *SQLitePool) open(ctx context.Context, pp *pathPool) (*handle, error) {
	if _, err := os.Stat(pp.path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", pp.path, domain.ErrSourceUnavailable)
	}

	dsn := "file:" + pp.path + "?mode=ro&_pragma=busy_timeout(5000)"
	if !p.settings.ReadOnly {
		dsn = "file:" + pp.path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Warn("database %s unreachable: %v", pp.path, err)
		return nil, fmt.Errorf("opening %s: %w", pp.path, domain.ErrSourceUnavailable)
	}

	// One underlying connection per handle; the pool does the sharing.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Warn("database %s failed ping: %v", pp.path, err)
		return nil, fmt.Errorf("opening %s: %w", pp.path, domain.ErrSourceUnavailable)
	}

	return &handle{db: db, pp: pp, pool: p}, nil
}

// DB exposes the underlying handle for queries.
func (h *handle) DB() *sql.DB {
	return h.db
}

// Release health-checks the handle and parks it for reuse. Handles that
// fail the probe, and handles returned after Close, are discarded.
// Release is idempotent.
func (h *handle) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	var one int
	healthy := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one) == nil && one == 1

	p := h.pool
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !healthy {
		if !healthy {
			logger.Debug("discarding unhealthy handle for %s", h.pp.path)
		}
		h.db.Close()
		h.pp.live--
		return
	}
	h.pp.free <- h
}

// canonicalise resolves path to a stable identity so symlinked and
// relative spellings of the same file share one sub-pool.
func canonicalise(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
