package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pool errors.

	// ErrPoolTimeout indicates the connection pool stayed at capacity past
	// the caller's wait budget. The affected operation is abandoned; other
	// paths' pools are unaffected.
	ErrPoolTimeout = errors.New("connection pool timeout")

	// ErrPoolClosed indicates the pool has been shut down.
	ErrPoolClosed = errors.New("connection pool closed")

	// Adapter errors.

	// ErrSourceUnavailable indicates a tool's storage location is missing,
	// locked, or unreadable. Recovered at the adapter boundary and surfaced
	// to callers only as an availability flag, never as a call failure.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrParse indicates a single native record could not be normalised.
	// Always recovered locally: the record is skipped and logged.
	ErrParse = errors.New("parse error")

	// Scoring errors.

	// ErrScoringSignalUnavailable indicates an optional scoring signal
	// (version-control history) could not be computed. Scoring proceeds
	// without the signal.
	ErrScoringSignalUnavailable = errors.New("scoring signal unavailable")
)
