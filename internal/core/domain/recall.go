package domain

import "time"

// Result limit bounds. Requests outside the range are clamped, not rejected,
// so a sloppy caller still gets a bounded response.
const (
	MinRecallLimit     = 1
	MaxRecallLimit     = 100
	DefaultRecallLimit = 10

	// DefaultRecallDays is the lookback window when the caller gives none.
	DefaultRecallDays = 30
)

// RecallRequest carries the caller's filters for conversation recall.
type RecallRequest struct {
	// Tools selects which assistants to read. Empty means all.
	Tools []Tool

	// Days is the lookback window on UpdatedAt. Zero means the default.
	Days int

	// Query is a free-text filter matched case-insensitively against the
	// title and message content.
	Query string

	// Types restricts results to the given classifications. Empty means all.
	Types []ConversationType

	// MinScore drops results scoring below it. Zero keeps everything.
	MinScore float64

	// Limit bounds the result set; clamped to [MinRecallLimit, MaxRecallLimit].
	Limit int

	// Fast skips scoring signals that need extra I/O.
	Fast bool

	// Workspace, when set, scopes results to conversations whose resolved
	// project root matches this path.
	Workspace string
}

// EffectiveTools returns the requested tools, or all tools when unset.
func (r *RecallRequest) EffectiveTools() []Tool {
	if len(r.Tools) == 0 {
		return AllTools()
	}
	return r.Tools
}

// EffectiveDays returns the lookback window with the default applied.
func (r *RecallRequest) EffectiveDays() int {
	if r.Days <= 0 {
		return DefaultRecallDays
	}
	return r.Days
}

// EffectiveLimit returns the clamped result limit.
func (r *RecallRequest) EffectiveLimit() int {
	switch {
	case r.Limit <= 0:
		return DefaultRecallLimit
	case r.Limit < MinRecallLimit:
		return MinRecallLimit
	case r.Limit > MaxRecallLimit:
		return MaxRecallLimit
	default:
		return r.Limit
	}
}

// WantsType reports whether the request accepts the given classification.
func (r *RecallRequest) WantsType(t ConversationType) bool {
	if len(r.Types) == 0 {
		return true
	}
	for _, want := range r.Types {
		if want == t {
			return true
		}
	}
	return false
}

// ToolState describes how a tool's data source behaved during one call.
type ToolState string

// Per-tool availability states.
const (
	// ToolStateOK means the source was read and produced conversations.
	ToolStateOK ToolState = "ok"

	// ToolStateEmpty means the source was read but held nothing in range.
	ToolStateEmpty ToolState = "empty"

	// ToolStateUnavailable means the storage location is missing or unreadable.
	ToolStateUnavailable ToolState = "unavailable"

	// ToolStateError means reading the source failed.
	ToolStateError ToolState = "error"

	// ToolStateTimeout means the adapter exceeded its time budget.
	ToolStateTimeout ToolState = "timeout"
)

// ToolStatus reports one tool's contribution to a result, so callers can
// tell "no conversations" apart from "this tool could not be read".
type ToolStatus struct {
	// Tool is the assistant this status describes.
	Tool Tool

	// State is the availability outcome.
	State ToolState

	// Conversations is how many conversations the tool contributed before
	// global filtering and truncation.
	Conversations int

	// Detail carries the error text for error/unavailable states.
	Detail string
}

// RecallSummary is the envelope metadata for a recall result.
type RecallSummary struct {
	// Statuses holds one entry per requested tool, in request order.
	Statuses []ToolStatus

	// Total is the number of conversations returned after ranking.
	Total int

	// Elapsed is the wall-clock processing time.
	Elapsed time.Duration

	// Query, Days, and Types echo the applied filters.
	Query string
	Days  int
	Types []ConversationType

	// Scored is false when the fast path skipped I/O-bound scoring signals;
	// scores are still present but computed from in-memory signals only.
	Scored bool
}

// RecallResult is the ranked outcome of a conversation recall.
type RecallResult struct {
	// Summary describes how the result was produced.
	Summary RecallSummary

	// Conversations is the ranked, truncated result set.
	Conversations []Conversation
}

// Default bounds for file ranking.
const (
	DefaultMaxFiles = 50
	MaxMaxFiles     = 500
)

// RankRequest carries the caller's parameters for file ranking.
type RankRequest struct {
	// Root is the project directory to rank. Empty means the working
	// directory as resolved by the caller.
	Root string

	// Extensions restricts results to the given extensions (with or
	// without the leading dot). Empty means all.
	Extensions []string

	// MaxFiles bounds the result set; clamped to [1, MaxMaxFiles].
	MaxFiles int

	// WithScores enables relevance scoring; when false the listing is
	// returned in directory order with nil scores.
	WithScores bool

	// Fast skips the version-control activity signal.
	Fast bool
}

// EffectiveMaxFiles returns the clamped file limit.
func (r *RankRequest) EffectiveMaxFiles() int {
	switch {
	case r.MaxFiles <= 0:
		return DefaultMaxFiles
	case r.MaxFiles > MaxMaxFiles:
		return MaxMaxFiles
	default:
		return r.MaxFiles
	}
}

// WantsExtension reports whether the request accepts the given extension.
// Extensions are compared without the leading dot, case-insensitively.
func (r *RankRequest) WantsExtension(ext string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	ext = normaliseExt(ext)
	for _, want := range r.Extensions {
		if normaliseExt(want) == ext {
			return true
		}
	}
	return false
}

func normaliseExt(ext string) string {
	for len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return lowerASCII(ext)
}

// lowerASCII avoids pulling strings into the hot filter path for a trivial
// ASCII-only comparison; extensions are ASCII in practice.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// RankSummary is the envelope metadata for a file-ranking result.
type RankSummary struct {
	// Root is the ranked directory.
	Root string

	// Walked is the number of files considered before truncation.
	Walked int

	// Elapsed is the wall-clock processing time.
	Elapsed time.Duration

	// Scored is false when scoring was disabled or degraded to the fast path.
	Scored bool

	// GitAvailable is false when the version-control signal could not be
	// computed (missing repository, git not installed, or fast mode).
	GitAvailable bool
}

// RankResult is the ranked outcome of a file-relevance call.
type RankResult struct {
	// Summary describes how the result was produced.
	Summary RankSummary

	// Files is the ranked, truncated result set.
	Files []FileRecord
}
