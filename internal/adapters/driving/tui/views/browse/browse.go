// Package browse provides the conversation list view for the TUI.
package browse

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
)

// View is the conversation browser: a filter input, the recalled
// conversation list and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	filter    *input.FilterInput
	list      *list.ConversationList
	statusbar *status.Bar

	recallService driving.RecallService
	ctx           context.Context

	width       int
	height      int
	ready       bool
	err         error
	focusFilter bool // true = filter input captures keys
	statuses    []domain.ToolStatus
}

// NewView creates a new browse view.
func NewView(s *styles.Styles, km *keymap.KeyMap, recallService driving.RecallService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		filter:        input.NewFilterInput(s),
		list:          list.NewConversationList(s),
		statusbar:     status.NewBar(s, km),
		recallService: recallService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init runs the initial recall so the list is populated on entry.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetState(status.StateRecalling)
	return v.performRecall("")
}

// Update handles messages for the browse view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RecallCompleted:
		v.handleRecallCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Filter mode: enter submits, esc cancels, everything else types.
	if v.focusFilter {
		switch msg.Type {
		case tea.KeyEnter:
			v.focusFilter = false
			v.filter.Blur()
			v.statusbar.SetState(status.StateRecalling)
			return v, v.performRecall(v.filter.Value())
		case tea.KeyEsc:
			v.focusFilter = false
			v.filter.Blur()
			v.filter.SetValue("")
			return v, nil
		default:
			v.filter, _ = v.filter.Update(msg)
			return v, nil
		}
	}

	// Esc signals to leave the browser
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	// Enter opens the selected conversation
	if msg.Type == tea.KeyEnter {
		conv := v.list.SelectedConversation()
		if conv == nil {
			return v, nil
		}
		selected := *conv
		return v, func() tea.Msg {
			return messages.ConversationSelected{Conversation: selected}
		}
	}

	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyUp:
		v.list.MoveUp()
		return v, nil
	case tea.KeyDown:
		v.list.MoveDown()
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(msg.String(), v.keymap.Filter):
		v.focusFilter = true
		return v, v.filter.Focus()
	case keymap.Matches(msg.String(), v.keymap.Refresh):
		v.statusbar.SetState(status.StateRecalling)
		return v, v.performRecall(v.filter.Value())
	}

	return v, nil
}

// performRecall runs the recall off the update loop and reports back.
func (v *View) performRecall(query string) tea.Cmd {
	return func() tea.Msg {
		if v.recallService == nil {
			return messages.ErrorOccurred{Err: ErrNoRecallService}
		}

		result, err := v.recallService.Recall(v.ctx, domain.RecallRequest{Query: query})
		return messages.RecallCompleted{Result: result, Err: err}
	}
}

// handleRecallCompleted processes the recall result.
func (v *View) handleRecallCompleted(msg messages.RecallCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.list.SetConversations(msg.Result.Conversations)
	v.statuses = msg.Result.Summary.Statuses
	v.statusbar.SetState(status.StateLoaded)
	v.statusbar.SetConversationCount(len(msg.Result.Conversations))
}

// View renders the browse view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := v.styles.Title.Render("Hindsight")
	sections = append(sections, header, "")

	if v.focusFilter || v.filter.Value() != "" {
		sections = append(sections, v.filter.View(), "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if line := v.renderDegraded(); line != "" {
		sections = append(sections, "", line)
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDegraded summarises tools that contributed nothing usable.
func (v *View) renderDegraded() string {
	parts := make([]string, 0, len(v.statuses))
	for _, st := range v.statuses {
		switch st.State {
		case domain.ToolStateOK, domain.ToolStateEmpty:
			continue
		case domain.ToolStateUnavailable, domain.ToolStateError, domain.ToolStateTimeout:
			parts = append(parts, fmt.Sprintf("%s %s", st.Tool, st.State))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	line := "Degraded: "
	for i, p := range parts {
		if i > 0 {
			line += ", "
		}
		line += p
	}
	return v.styles.Warning.Render(line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.filter.SetWidth(width)
	v.list.SetDimensions(width, height-9) // Reserve space for header, filter, status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Filter returns the current filter query.
func (v *View) Filter() string {
	return v.filter.Value()
}

// Conversations returns the current list contents.
func (v *View) Conversations() []domain.Conversation {
	return v.list.Conversations()
}

// SelectedIndex returns the index of the selected conversation.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedConversation returns the currently selected conversation.
func (v *View) SelectedConversation() *domain.Conversation {
	return v.list.SelectedConversation()
}

// Statuses returns the per-tool statuses from the last recall.
func (v *View) Statuses() []domain.ToolStatus {
	return v.statuses
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// FilterFocused returns whether the filter input has focus.
func (v *View) FilterFocused() bool {
	return v.focusFilter
}

// Reset clears the filter and list state.
func (v *View) Reset() {
	v.focusFilter = false
	v.filter.Blur()
	v.filter.SetValue("")
	v.list.SetConversations(nil)
	v.statuses = nil
	v.err = nil
	v.statusbar.Clear()
}
