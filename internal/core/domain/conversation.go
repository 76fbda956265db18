package domain

import (
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

// Message roles.
const (
	// RoleUser is a message typed by the developer.
	RoleUser Role = "user"

	// RoleAssistant is a message produced by the assistant.
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single exchange within a conversation.
// Messages keep the insertion order of the source and are never reordered.
type Message struct {
	// Role is who authored the message.
	Role Role

	// Content is the plain text content after normalisation.
	Content string

	// Timestamp is when the message was recorded, in the tool's clock.
	Timestamp time.Time
}

// ConversationType classifies what a conversation was about.
// The classification is derived from content during normalisation and feeds
// the type-weight term of the relevance score.
type ConversationType string

// Conversation classifications.
const (
	// TypeDebugging covers error hunting and fixing sessions.
	TypeDebugging ConversationType = "debugging"

	// TypeArchitecture covers design and structure discussions.
	TypeArchitecture ConversationType = "architecture"

	// TypeCodeReview covers review and refactoring sessions.
	TypeCodeReview ConversationType = "code_review"

	// TypeLearning covers how-does-X-work explorations.
	TypeLearning ConversationType = "learning"

	// TypeGeneral is everything that matched no stronger signal.
	TypeGeneral ConversationType = "general"
)

// IsValid returns true if the conversation type is recognised.
func (t ConversationType) IsValid() bool {
	switch t {
	case TypeDebugging, TypeArchitecture, TypeCodeReview, TypeLearning, TypeGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ConversationType) String() string {
	return string(t)
}

// ParseConversationType converts a string into a ConversationType.
func ParseConversationType(s string) (ConversationType, error) {
	t := ConversationType(s)
	if !t.IsValid() {
		return "", ErrInvalidInput
	}
	return t, nil
}

// Conversation is the canonical representation of one assistant session
// after a source adapter has normalised the tool's native records.
// It is immutable once parsed: aggregation re-parses on every query rather
// than mutating previously returned values.
type Conversation struct {
	// Tool is the assistant that produced this conversation.
	Tool Tool

	// ID is the stable identifier from the source, or a synthetic one when
	// the source record carries none.
	ID string

	// Title is a human-readable summary line.
	Title string

	// CreatedAt is when the conversation started (tool-native clock).
	CreatedAt time.Time

	// UpdatedAt is when the conversation last changed (tool-native clock).
	UpdatedAt time.Time

	// Messages holds the exchanges in source order.
	Messages []Message

	// Workspace scopes the conversation to a project, when known.
	Workspace Workspace

	// Type is the derived classification.
	Type ConversationType

	// Score is the relevance score, nil until the scoring engine ran.
	Score *float64
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// MatchesQuery reports whether the query appears, case-insensitively, in the
// title or in any message content. An empty query matches everything.
func (c *Conversation) MatchesQuery(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Title), query) {
		return true
	}
	for i := range c.Messages {
		if strings.Contains(strings.ToLower(c.Messages[i].Content), query) {
			return true
		}
	}
	return false
}

// Preview returns the first user message trimmed to max runes, used by the
// CLI and TUI when a conversation has no title.
func (c *Conversation) Preview(max int) string {
	for i := range c.Messages {
		if c.Messages[i].Role != RoleUser {
			continue
		}
		text := strings.TrimSpace(c.Messages[i].Content)
		if text == "" {
			continue
		}
		runes := []rune(text)
		if len(runes) > max {
			return string(runes[:max]) + "..."
		}
		return text
	}
	return ""
}
