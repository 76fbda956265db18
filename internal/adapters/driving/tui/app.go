package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/views/browse"
	"github.com/custodia-labs/hindsight-cli/internal/adapters/driving/tui/views/transcript"
	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// browseView is the conversation list with filtering.
	browseView *browse.View

	// transcriptView shows one conversation's messages.
	transcriptView *transcript.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// selected tracks the conversation opened in the transcript.
	selected *domain.Conversation

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		browseView:     browse.NewView(s, nil, ports.Recall),
		transcriptView: transcript.NewView(s),
		currentView:    messages.ViewBrowse,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.browseView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("hindsight - Conversation Recall"),
		a.browseView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.browseView.SetDimensions(msg.Width, msg.Height)
		a.transcriptView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewBrowse:
			// q quits from the list unless the filter is being typed into
			if msg.String() == "q" && !a.browseView.FilterFocused() {
				return a, tea.Quit
			}
			if msg.String() == "?" && !a.browseView.FilterFocused() {
				a.currentView = messages.ViewHelp
				return a, nil
			}
			a.browseView, cmd = a.browseView.Update(msg)
			return a, cmd

		case messages.ViewTranscript:
			a.transcriptView, cmd = a.transcriptView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewBrowse
				return a, nil
			}
			return a, nil
		}
		return a, nil

	case messages.RecallCompleted:
		a.browseView, cmd = a.browseView.Update(msg)
		a.err = a.browseView.Err()
		return a, cmd

	case messages.ConversationSelected:
		a.selected = &msg.Conversation
		a.transcriptView.SetConversation(&msg.Conversation)
		a.currentView = messages.ViewTranscript
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewBrowse {
			a.browseView, cmd = a.browseView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the active view
	switch a.currentView {
	case messages.ViewBrowse:
		a.browseView, cmd = a.browseView.Update(msg)
	case messages.ViewTranscript:
		a.transcriptView, cmd = a.transcriptView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewBrowse:
		return a.browseView.View()
	case messages.ViewTranscript:
		return a.transcriptView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.browseView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Conversations:
  j/k, ↑/↓    Navigate list
  enter       Open transcript
  /           Filter by text
  r           Refresh
  q           Quit

Transcript:
  j/k, ↑/↓    Scroll
  PgUp/PgDn   Page
  g/G         Top / bottom
  esc         Back to list

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Selected returns the conversation open in the transcript, if any.
func (a *App) Selected() *domain.Conversation {
	return a.selected
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.browseView.SetDimensions(width, height)
	a.transcriptView.SetDimensions(width, height)
}
