// Package claude reads Claude Code session history. Sessions live under
// ~/.claude/projects as one directory per project, holding one
// line-delimited JSON file per session.
package claude

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.HistorySource = (*Source)(nil)

// Session lines can carry whole files of pasted code.
const maxLineBytes = 10 << 20

// Source reads Claude Code session files.
type Source struct {
	root string
}

// New creates a source reading from root. An empty root selects the
// default ~/.claude/projects.
func New(root string) *Source {
	return &Source{root: root}
}

// Tool returns the tool this source reads.
func (s *Source) Tool() domain.Tool {
	return domain.ToolClaude
}

// Locate discovers project directories containing session files.
// A machine without Claude Code yields an empty list.
func (s *Source) Locate(ctx context.Context) ([]domain.SourceLocation, error) {
	dir, ok := s.dir()
	if !ok {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, domain.ErrSourceUnavailable)
	}

	var locs []domain.SourceLocation
	for _, e := range entries {
		if ctx.Err() != nil {
			return locs, ctx.Err()
		}
		if !e.IsDir() {
			continue
		}
		project := filepath.Join(dir, e.Name())
		if !hasSessions(project) {
			continue
		}
		locs = append(locs, domain.SourceLocation{
			Tool: domain.ToolClaude,
			Path: project,
			Kind: domain.SourceKindSessionFile,
			Workspace: domain.Workspace{
				StorageDir:  project,
				ProjectRoot: decodeProjectDir(e.Name()),
			},
		})
	}
	return locs, nil
}

// Parse reads every session file in the located project directory.
// Session files are visited in name order so repeated calls produce the
// same conversation sequence.
func (s *Source) Parse(ctx context.Context, loc domain.SourceLocation) ([]domain.Conversation, error) {
	entries, err := os.ReadDir(loc.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc.Path, domain.ErrSourceUnavailable)
	}

	var convs []domain.Conversation
	for _, e := range entries {
		if ctx.Err() != nil {
			return convs, ctx.Err()
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		if conv, ok := s.parseSession(ctx, filepath.Join(loc.Path, e.Name()), loc.Workspace); ok {
			convs = append(convs, conv)
		}
	}
	return convs, nil
}

// record is one line of a session file. The type field discriminates
// message envelopes from summary lines; other line types are skipped.
type record struct {
	Type      string          `json:"type"`
	Summary   string          `json:"summary"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"sessionId"`
	CWD       string          `json:"cwd"`
	Message   *messagePayload `json:"message"`
}

type messagePayload struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// parseSession normalises one session file into a Conversation. Malformed
// lines are skipped and logged; ok is false when nothing usable remains.
func (s *Source) parseSession(ctx context.Context, path string, ws domain.Workspace) (domain.Conversation, bool) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("skipping session %s: %v", path, err)
		return domain.Conversation{}, false
	}
	defer f.Close()

	conv := domain.Conversation{
		Tool:      domain.ToolClaude,
		Workspace: ws,
		Type:      domain.TypeGeneral,
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		if line%128 == 0 && ctx.Err() != nil {
			break
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("skipping malformed record %s:%d: %v", path, line, err)
			continue
		}

		switch rec.Type {
		case "summary":
			if conv.Title == "" {
				conv.Title = rec.Summary
			}
		case "user", "assistant":
			if rec.Message == nil {
				continue
			}
			role := domain.Role(rec.Message.Role)
			if !role.IsValid() {
				logger.Warn("skipping record %s:%d: unknown role %q", path, line, rec.Message.Role)
				continue
			}
			content := contentText(rec.Message.Content)
			if content == "" {
				continue
			}
			conv.Messages = append(conv.Messages, domain.Message{
				Role:      role,
				Content:   content,
				Timestamp: rec.Timestamp,
			})
			if rec.SessionID != "" {
				conv.ID = rec.SessionID
			}
			if rec.CWD != "" {
				conv.Workspace.ProjectRoot = rec.CWD
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("stopped reading %s: %v", path, err)
	}

	if len(conv.Messages) == 0 {
		return domain.Conversation{}, false
	}

	if conv.ID == "" {
		conv.ID = strings.TrimSuffix(filepath.Base(path), ".jsonl")
	}
	if conv.Title == "" {
		conv.Title = conv.Preview(60)
	}
	conv.CreatedAt = conv.Messages[0].Timestamp
	conv.UpdatedAt = conv.Messages[len(conv.Messages)-1].Timestamp
	if conv.UpdatedAt.IsZero() {
		if info, err := os.Stat(path); err == nil {
			conv.UpdatedAt = info.ModTime()
		}
	}
	return conv, true
}

// contentText flattens a message content field, which is either a bare
// string or a list of typed blocks with only text blocks carrying prose.
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// dir resolves the projects directory.
func (s *Source) dir() (string, bool) {
	if s.root != "" {
		return s.root, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".claude", "projects"), true
}

// hasSessions reports whether dir holds at least one session file.
func hasSessions(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			return true
		}
	}
	return false
}

// decodeProjectDir reverses the encoding Claude Code applies to project
// directory names, where path separators become dashes. The encoding is
// lossy for paths containing real dashes, so the session cwd field
// overrides this value whenever present.
func decodeProjectDir(name string) string {
	if !strings.HasPrefix(name, "-") {
		return ""
	}
	return strings.ReplaceAll(name, "-", "/")
}
