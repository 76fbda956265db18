// Package windsurf reads Windsurf chat sessions from the editor's
// per-workspace state databases.
package windsurf

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/history/vscdb"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.HistorySource = (*Source)(nil)

// sessionIndexKey is where Windsurf stores its chat session index.
const sessionIndexKey = "chat.ChatSessionStore.index"

// Source reads Windsurf chat sessions through the connection pool.
type Source struct {
	pool driven.DatabasePool
	root string
}

// New creates a source reading through the given pool. An empty root
// selects the platform's Windsurf workspace storage.
func New(pool driven.DatabasePool, root string) *Source {
	return &Source{pool: pool, root: root}
}

// Tool returns the tool this source reads.
func (s *Source) Tool() domain.Tool {
	return domain.ToolWindsurf
}

// Locate discovers workspace storage directories holding a chat-state
// database. A machine without Windsurf yields an empty list.
func (s *Source) Locate(ctx context.Context) ([]domain.SourceLocation, error) {
	root := s.root
	if root == "" {
		var err error
		root, err = vscdb.StorageRoot("Windsurf")
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
			Tool: domain.ToolWindsurf,
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

// sessionIndex is the stored session map, keyed by session id. Entries
// stay raw so one damaged session cannot sink the rest.
type sessionIndex struct {
	Entries map[string]json.RawMessage `json:"entries"`
}

type session struct {
	Title       string    `json:"title"`
	CreatedAtMs int64     `json:"createdAtMs"`
	UpdatedAtMs int64     `json:"updatedAtMs"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	SentAtMs int64  `json:"sentAtMs"`
}

// Parse reads the sessions stored at one location. The index map is walked
// in sorted id order so repeated parses yield the same sequence.
func (s *Source) Parse(ctx context.Context, loc domain.SourceLocation) ([]domain.Conversation, error) {
	value, ok, err := vscdb.ReadValue(ctx, s.pool, loc.Path, sessionIndexKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var index sessionIndex
	if err := json.Unmarshal(value, &index); err != nil {
		return nil, fmt.Errorf("decoding session index in %s: %w", loc.Path, domain.ErrParse)
	}

	ids := make([]string, 0, len(index.Entries))
	for id := range index.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var convs []domain.Conversation
	for _, id := range ids {
		var sess session
		if err := json.Unmarshal(index.Entries[id], &sess); err != nil {
			logger.Warn("skipping damaged session %s in %s: %v", id, loc.Path, err)
			continue
		}
		if conv, ok := normaliseSession(id, sess, loc); ok {
			convs = append(convs, conv)
		}
	}
	return convs, nil
}

// normaliseSession maps one stored session onto the Conversation model.
func normaliseSession(id string, sess session, loc domain.SourceLocation) (domain.Conversation, bool) {
	conv := domain.Conversation{
		Tool:      domain.ToolWindsurf,
		ID:        id,
		Title:     sess.Title,
		Workspace: loc.Workspace,
		Type:      domain.TypeGeneral,
	}

	for _, m := range sess.Messages {
		if m.Content == "" {
			continue
		}
		role := domain.Role(m.Role)
		if !role.IsValid() {
			logger.Warn("skipping message with unknown role %q in session %s", m.Role, id)
			continue
		}
		msg := domain.Message{Role: role, Content: m.Content}
		if m.SentAtMs > 0 {
			msg.Timestamp = time.UnixMilli(m.SentAtMs).UTC()
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if len(conv.Messages) == 0 {
		return domain.Conversation{}, false
	}

	if conv.Title == "" {
		conv.Title = conv.Preview(60)
	}
	if sess.CreatedAtMs > 0 {
		conv.CreatedAt = time.UnixMilli(sess.CreatedAtMs).UTC()
	} else {
		conv.CreatedAt = conv.Messages[0].Timestamp
	}
	if sess.UpdatedAtMs > 0 {
		conv.UpdatedAt = time.UnixMilli(sess.UpdatedAtMs).UTC()
	} else {
		conv.UpdatedAt = conv.Messages[len(conv.Messages)-1].Timestamp
	}
	return conv, true
}
