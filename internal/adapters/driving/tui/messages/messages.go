// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// RecallRequested is a command to run a conversation recall.
type RecallRequested struct {
	Request domain.RecallRequest
}

// RecallCompleted carries the recall result back to the model.
type RecallCompleted struct {
	Result *domain.RecallResult
	Err    error
}

// ConversationSelected signals a conversation was opened for reading.
type ConversationSelected struct {
	Conversation domain.Conversation
}

// FilterChanged is sent when the filter query input changes.
type FilterChanged struct {
	Query string
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewBrowse is the conversation list with filtering.
	ViewBrowse ViewType = iota
	// ViewTranscript shows one conversation's messages.
	ViewTranscript
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewBrowse:
		return "browse"
	case ViewTranscript:
		return "transcript"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
