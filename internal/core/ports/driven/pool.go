package driven

import (
	"context"
	"database/sql"
)

// DatabasePool hands out pooled read connections to tool databases.
// Connections are bounded per database path; callers must Release every
// handle they Acquire.
type DatabasePool interface {
	// Acquire returns a connection to the database at path, reusing an
	// idle handle when one exists. Blocks up to the pool's acquire
	// timeout when the path is at capacity, then returns
	// domain.ErrPoolTimeout. Returns domain.ErrSourceUnavailable when
	// the file cannot be opened.
	Acquire(ctx context.Context, path string) (PooledConn, error)

	// Stats returns per-path usage counters.
	Stats() map[string]PoolPathStats

	// Close closes every handle, idle and outstanding. Subsequent
	// Acquire calls return domain.ErrPoolClosed.
	Close() error
}

// PooledConn is one checked-out database handle.
type PooledConn interface {
	// DB exposes the underlying handle for queries.
	DB() *sql.DB

	// Release returns the handle to the pool. The pool health-checks it
	// and discards it if the check fails. Release is idempotent.
	Release()
}

// PoolPathStats are usage counters for one database path.
type PoolPathStats struct {
	// Live is handles currently open, idle plus checked out.
	Live int

	// Idle is handles parked and ready for reuse.
	Idle int

	// Opens counts physical database opens since pool creation.
	Opens uint64
}
