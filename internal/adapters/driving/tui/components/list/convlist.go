// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// ConversationList displays recalled conversations in a navigable list.
type ConversationList struct {
	items    []domain.Conversation
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewConversationList creates a new conversation list component.
func NewConversationList(s *styles.Styles) *ConversationList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ConversationList{
		items:    nil,
		selected: 0,
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Init initialises the conversation list.
func (c *ConversationList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (c *ConversationList) Update(msg tea.Msg) (*ConversationList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			c.MoveUp()
		case tea.KeyDown:
			c.MoveDown()
		default:
			// Handle other keys
		}
		switch msg.String() {
		case "k":
			c.MoveUp()
		case "j":
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the conversation list.
func (c *ConversationList) View() string {
	if len(c.items) == 0 {
		return c.styles.Muted.Render("No conversations")
	}

	lines := make([]string, 0, len(c.items)*2+2)

	header := c.styles.Subtitle.Render(fmt.Sprintf("Conversations (%d)", len(c.items)))
	lines = append(lines, header, "")

	// Each item takes two lines (title + meta), so halve the height
	visibleCount := (c.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if c.selected >= visibleCount {
		start = c.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(c.items) {
		end = len(c.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, c.renderItem(i, &c.items[i]))
	}

	return strings.Join(lines, "\n")
}

// renderItem formats a single conversation with its metadata line.
func (c *ConversationList) renderItem(index int, conv *domain.Conversation) string {
	indicator := "  "
	if index == c.selected {
		indicator = "> "
	}

	title := conv.Title
	if title == "" {
		title = conv.Preview(60)
	}
	if title == "" {
		title = "(Untitled)"
	}

	maxTitleLen := c.width - 12
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	score := ""
	if conv.Score != nil {
		score = fmt.Sprintf("%.2f", *conv.Score)
	}

	var titleLine string
	if index == c.selected {
		titleLine = c.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, score))
	} else {
		titleLine = c.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
			c.styles.Muted.Render(score)
	}

	meta := fmt.Sprintf("    %s %s · %s · %d messages",
		c.styles.ToolBadge(conv.Tool.String()), conv.Type, age(conv.UpdatedAt), conv.MessageCount())
	metaLine := c.styles.Muted.Render(meta)

	return titleLine + "\n" + metaLine
}

// age renders how long ago t was, coarsely.
func age(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// SetConversations updates the list contents.
func (c *ConversationList) SetConversations(items []domain.Conversation) {
	c.items = items
	c.selected = 0
}

// Conversations returns the current items.
func (c *ConversationList) Conversations() []domain.Conversation {
	return c.items
}

// Selected returns the index of the selected conversation.
func (c *ConversationList) Selected() int {
	return c.selected
}

// SetSelected sets the selected index.
func (c *ConversationList) SetSelected(index int) {
	if index >= 0 && index < len(c.items) {
		c.selected = index
	}
}

// SelectedConversation returns the currently selected conversation, or nil.
func (c *ConversationList) SelectedConversation() *domain.Conversation {
	if len(c.items) == 0 || c.selected < 0 || c.selected >= len(c.items) {
		return nil
	}
	return &c.items[c.selected]
}

// MoveUp moves selection up.
func (c *ConversationList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *ConversationList) MoveDown() {
	if c.selected < len(c.items)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *ConversationList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Width returns the current width.
func (c *ConversationList) Width() int {
	return c.width
}

// Height returns the current height.
func (c *ConversationList) Height() int {
	return c.height
}

// Count returns the number of conversations.
func (c *ConversationList) Count() int {
	return len(c.items)
}

// IsEmpty returns whether the list is empty.
func (c *ConversationList) IsEmpty() bool {
	return len(c.items) == 0
}
