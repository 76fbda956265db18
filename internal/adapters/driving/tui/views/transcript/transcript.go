// Package transcript provides the conversation transcript view for the TUI.
package transcript

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// View renders one conversation's messages with scrolling.
// The transcript is built from the already-parsed conversation, so there is
// no loading state; everything it shows is in memory.
type View struct {
	styles *styles.Styles

	conversation *domain.Conversation
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new transcript view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s}
}

// SetConversation sets the conversation and rebuilds the transcript.
func (v *View) SetConversation(conv *domain.Conversation) {
	v.conversation = conv
	v.scrollOffset = 0
	v.buildLines()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the transcript view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		v.buildLines()
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset -= v.visibleLines()
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	case "pgdown", "ctrl+d":
		maxOffset := v.maxScrollOffset()
		v.scrollOffset += v.visibleLines()
		if v.scrollOffset > maxOffset {
			v.scrollOffset = maxOffset
		}
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewBrowse}
		}
	}

	return v, nil
}

// buildLines flattens the conversation into wrapped display lines.
func (v *View) buildLines() {
	if v.conversation == nil {
		v.lines = nil
		return
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	lines := make([]string, 0, len(v.conversation.Messages)*4)
	for i := range v.conversation.Messages {
		msg := &v.conversation.Messages[i]

		speaker := "You"
		if msg.Role == domain.RoleAssistant {
			speaker = "Assistant"
		}
		if !msg.Timestamp.IsZero() {
			speaker += "  " + msg.Timestamp.Format("15:04")
		}
		lines = append(lines, "@"+speaker)

		for _, raw := range strings.Split(msg.Content, "\n") {
			for len(raw) > contentWidth {
				lines = append(lines, raw[:contentWidth])
				raw = raw[contentWidth:]
			}
			lines = append(lines, raw)
		}
		lines = append(lines, "")
	}

	v.lines = lines
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Reserve lines for title, separator, help, and padding
	reserved := 6
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	maxOffset := len(v.lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// View renders the transcript view.
func (v *View) View() string {
	var b strings.Builder

	title := "Transcript"
	if v.conversation != nil && v.conversation.Title != "" {
		title = v.conversation.Title
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")

	if v.conversation != nil {
		meta := fmt.Sprintf("%s · %s · %d messages",
			v.conversation.Tool, v.conversation.Type, v.conversation.MessageCount())
		b.WriteString(v.styles.Muted.Render(meta))
		b.WriteString("\n")
	}

	sep := minInt(v.width-4, 60)
	if sep < 1 {
		sep = 1
	}
	b.WriteString(strings.Repeat("─", sep))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No messages)"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		line := v.lines[i]
		if strings.HasPrefix(line, "@") {
			b.WriteString(v.styles.Subtitle.Render(line[1:]))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage,
			v.scrollOffset+1,
			minInt(v.scrollOffset+visible, len(v.lines)),
			len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.buildLines()
}

// Conversation returns the current conversation.
func (v *View) Conversation() *domain.Conversation {
	return v.conversation
}

// Lines returns the built transcript lines.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset returns the current scroll position.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
