// Package cursor reads Cursor chat history from the editor's per-workspace
// state databases.
package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/history/vscdb"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.HistorySource = (*Source)(nil)

// chatDataKey is where Cursor stores the chat panel state.
const chatDataKey = "workbench.panel.aichat.view.aichat.chatdata"

// Source reads Cursor chat tabs through the connection pool.
type Source struct {
	pool driven.DatabasePool
	root string
}

// New creates a source reading through the given pool. An empty root
// selects the platform's Cursor workspace storage.
func New(pool driven.DatabasePool, root string) *Source {
	return &Source{pool: pool, root: root}
}

// Tool returns the tool this source reads.
func (s *Source) Tool() domain.Tool {
	return domain.ToolCursor
}

// Locate discovers workspace storage directories holding a chat-state
// database. A machine without Cursor yields an empty list.
func (s *Source) Locate(ctx context.Context) ([]domain.SourceLocation, error) {
	root := s.root
	if root == "" {
		var err error
		root, err = vscdb.StorageRoot("Cursor")
		if err != nil {
			return nil, nil
		}
	}

	dirs, err := vscdb.Locations(root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, domain.ErrSourceUnavailable)
	}

	locs := make([]domain.SourceLocation, 0, len(dirs))
	for _, dir := range dirs {
		if ctx.Err() != nil {
			return locs, ctx.Err()
		}
		projectRoot, _ := vscdb.WorkspaceFolder(dir)
		locs = append(locs, domain.SourceLocation{
			Tool: domain.ToolCursor,
			Path: filepath.Join(dir, vscdb.DBName),
			Kind: domain.SourceKindDatabase,
			Workspace: domain.Workspace{
				StorageDir:  dir,
				ProjectRoot: projectRoot,
			},
		})
	}
	return locs, nil
}

// chatData is the stored panel state. Tabs stay raw so one damaged tab
// cannot sink the rest.
type chatData struct {
	Tabs []json.RawMessage `json:"tabs"`
}

type chatTab struct {
	TabID        string   `json:"tabId"`
	ChatTitle    string   `json:"chatTitle"`
	CreatedAt    int64    `json:"createdAt"`
	LastSendTime int64    `json:"lastSendTime"`
	Bubbles      []bubble `json:"bubbles"`
}

type bubble struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Parse reads the chat tabs stored at one location. Each tab becomes one
// Conversation; damaged tabs are skipped and logged.
func (s *Source) Parse(ctx context.Context, loc domain.SourceLocation) ([]domain.Conversation, error) {
	value, ok, err := vscdb.ReadValue(ctx, s.pool, loc.Path, chatDataKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var data chatData
	if err := json.Unmarshal(value, &data); err != nil {
		return nil, fmt.Errorf("decoding chat data in %s: %w", loc.Path, domain.ErrParse)
	}

	var convs []domain.Conversation
	for i, raw := range data.Tabs {
		var tab chatTab
		if err := json.Unmarshal(raw, &tab); err != nil {
			logger.Warn("skipping damaged chat tab %d in %s: %v", i, loc.Path, err)
			continue
		}
		if conv, ok := s.normaliseTab(tab, i, loc); ok {
			convs = append(convs, conv)
		}
	}
	return convs, nil
}

// normaliseTab maps one chat tab onto the Conversation model. Tabs without
// any text are dropped.
func (s *Source) normaliseTab(tab chatTab, index int, loc domain.SourceLocation) (domain.Conversation, bool) {
	conv := domain.Conversation{
		Tool:      domain.ToolCursor,
		ID:        tab.TabID,
		Title:     tab.ChatTitle,
		Workspace: loc.Workspace,
		Type:      domain.TypeGeneral,
	}

	for _, b := range tab.Bubbles {
		if b.Text == "" {
			continue
		}
		var role domain.Role
		switch b.Type {
		case "user":
			role = domain.RoleUser
		case "ai":
			role = domain.RoleAssistant
		default:
			logger.Warn("skipping bubble with unknown type %q in %s", b.Type, loc.Path)
			continue
		}
		conv.Messages = append(conv.Messages, domain.Message{Role: role, Content: b.Text})
	}
	if len(conv.Messages) == 0 {
		return domain.Conversation{}, false
	}

	if conv.ID == "" {
		// Stable synthetic identifier, same input yields the same ID.
		conv.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(loc.Path+"#"+strconv.Itoa(index))).String()
	}
	if conv.Title == "" {
		conv.Title = conv.Preview(60)
	}
	if tab.CreatedAt > 0 {
		conv.CreatedAt = time.UnixMilli(tab.CreatedAt).UTC()
	}
	if tab.LastSendTime > 0 {
		conv.UpdatedAt = time.UnixMilli(tab.LastSendTime).UTC()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}
	return conv, true
}
