package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// snippetRunes bounds conversation previews in tool output.
const snippetRunes = 200

// RecallInput is the input schema for the recall_conversations tool.
type RecallInput struct {
	Query     string   `json:"query,omitempty" jsonschema:"free-text filter matched against titles and message content"`
	Days      int      `json:"days,omitempty" jsonschema:"lookback window in days (default 30)"`
	Tools     []string `json:"tools,omitempty" jsonschema:"restrict to these assistants: claude, cursor, windsurf (default all)"`
	Types     []string `json:"types,omitempty" jsonschema:"restrict to these conversation types: debugging, architecture, code_review, learning, general"`
	MinScore  float64  `json:"min_score,omitempty" jsonschema:"drop results scoring below this threshold (0 keeps everything)"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of conversations to return (default 10, max 100)"`
	Fast      bool     `json:"fast,omitempty" jsonschema:"skip scoring signals that need extra I/O"`
	Workspace string   `json:"workspace,omitempty" jsonschema:"only conversations whose project root matches this path"`
}

// RecallOutput is the output schema for the recall_conversations tool.
type RecallOutput struct {
	Conversations []ConversationOutput `json:"conversations"`
	Statuses      []ToolStatusOutput   `json:"statuses"`
	Total         int                  `json:"total"`
	Scored        bool                 `json:"scored"`
}

// ConversationOutput represents a single recalled conversation.
type ConversationOutput struct {
	Tool         string   `json:"tool"`
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	UpdatedAt    string   `json:"updated_at"`
	Type         string   `json:"type"`
	Score        *float64 `json:"score,omitempty"`
	MessageCount int      `json:"message_count"`
	Project      string   `json:"project,omitempty"`
	Snippet      string   `json:"snippet,omitempty"`
}

// ToolStatusOutput reports how one tool's source behaved during the call.
type ToolStatusOutput struct {
	Tool          string `json:"tool"`
	State         string `json:"state"`
	Conversations int    `json:"conversations"`
	Detail        string `json:"detail,omitempty"`
}

// FilesInput is the input schema for the find_relevant_files tool.
type FilesInput struct {
	Path       string   `json:"path,omitempty" jsonschema:"project directory to rank (default: the server's working directory)"`
	Extensions []string `json:"extensions,omitempty" jsonschema:"restrict to these file extensions, with or without the leading dot"`
	MaxFiles   int      `json:"max_files,omitempty" jsonschema:"maximum number of files to return (default 50, max 500)"`
	NoScores   bool     `json:"no_scores,omitempty" jsonschema:"disable scoring and return the listing in directory order"`
	Fast       bool     `json:"fast,omitempty" jsonschema:"skip the version-control activity signal"`
}

// FilesOutput is the output schema for the find_relevant_files tool.
type FilesOutput struct {
	Files        []FileOutput `json:"files"`
	Root         string       `json:"root"`
	Walked       int          `json:"walked"`
	Count        int          `json:"count"`
	Scored       bool         `json:"scored"`
	GitAvailable bool         `json:"git_available"`
}

// FileOutput represents a single ranked file.
type FileOutput struct {
	Path       string   `json:"path"`
	Size       int64    `json:"size"`
	ModTime    string   `json:"mod_time"`
	Commits    int      `json:"commits,omitempty"`
	LastCommit string   `json:"last_commit,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	Tier       string   `json:"tier,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recall_conversations",
		Description: "Recall prior conversations with AI coding assistants (Claude Code, Cursor, Windsurf) on this machine",
	}, s.handleRecall)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_relevant_files",
		Description: "Rank a project's files by contextual relevance using type, location, recency and commit activity",
	}, s.handleFiles)
}

// handleRecall handles the recall_conversations tool invocation.
func (s *Server) handleRecall(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecallInput,
) (*mcp.CallToolResult, RecallOutput, error) {
	req, err := recallRequest(input)
	if err != nil {
		return nil, RecallOutput{}, err
	}

	result, err := s.ports.Recall.Recall(ctx, req)
	if err != nil {
		return nil, RecallOutput{}, err
	}

	output := RecallOutput{
		Conversations: make([]ConversationOutput, len(result.Conversations)),
		Statuses:      make([]ToolStatusOutput, len(result.Summary.Statuses)),
		Total:         result.Summary.Total,
		Scored:        result.Summary.Scored,
	}
	for i := range result.Conversations {
		conv := &result.Conversations[i]
		output.Conversations[i] = ConversationOutput{
			Tool:         conv.Tool.String(),
			ID:           conv.ID,
			Title:        conv.Title,
			UpdatedAt:    conv.UpdatedAt.Format(time.RFC3339),
			Type:         conv.Type.String(),
			Score:        conv.Score,
			MessageCount: conv.MessageCount(),
			Project:      conv.Workspace.ProjectRoot,
			Snippet:      snippet(conv),
		}
	}
	for i, st := range result.Summary.Statuses {
		output.Statuses[i] = ToolStatusOutput{
			Tool:          st.Tool.String(),
			State:         string(st.State),
			Conversations: st.Conversations,
			Detail:        st.Detail,
		}
	}

	return nil, output, nil
}

// handleFiles handles the find_relevant_files tool invocation.
func (s *Server) handleFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FilesInput,
) (*mcp.CallToolResult, FilesOutput, error) {
	req := domain.RankRequest{
		Root:       input.Path,
		Extensions: input.Extensions,
		MaxFiles:   input.MaxFiles,
		WithScores: !input.NoScores,
		Fast:       input.Fast,
	}

	result, err := s.ports.Files.Rank(ctx, req)
	if err != nil {
		return nil, FilesOutput{}, err
	}

	output := FilesOutput{
		Files:        make([]FileOutput, len(result.Files)),
		Root:         result.Summary.Root,
		Walked:       result.Summary.Walked,
		Count:        len(result.Files),
		Scored:       result.Summary.Scored,
		GitAvailable: result.Summary.GitAvailable,
	}
	for i := range result.Files {
		rec := &result.Files[i]
		out := FileOutput{
			Path:    rec.Path,
			Size:    rec.Size,
			ModTime: rec.ModTime.Format(time.RFC3339),
			Commits: rec.Commits,
			Score:   rec.Score,
			Tier:    rec.Tier.String(),
		}
		if !rec.LastCommit.IsZero() {
			out.LastCommit = rec.LastCommit.Format(time.RFC3339)
		}
		output.Files[i] = out
	}

	return nil, output, nil
}

// recallRequest converts tool input into a domain request, rejecting
// unknown tool and type names so the caller learns about typos instead of
// silently recalling nothing.
func recallRequest(input RecallInput) (domain.RecallRequest, error) {
	req := domain.RecallRequest{
		Query:     input.Query,
		Days:      input.Days,
		MinScore:  input.MinScore,
		Limit:     input.Limit,
		Fast:      input.Fast,
		Workspace: input.Workspace,
	}

	for _, name := range input.Tools {
		tool, err := domain.ParseTool(name)
		if err != nil {
			return domain.RecallRequest{}, fmt.Errorf("unknown tool %q", name)
		}
		req.Tools = append(req.Tools, tool)
	}
	for _, name := range input.Types {
		typ, err := domain.ParseConversationType(name)
		if err != nil {
			return domain.RecallRequest{}, fmt.Errorf("unknown conversation type %q", name)
		}
		req.Types = append(req.Types, typ)
	}
	return req, nil
}

// snippet returns the opening of the first non-empty message, bounded so
// tool output stays readable.
func snippet(conv *domain.Conversation) string {
	for i := range conv.Messages {
		content := conv.Messages[i].Content
		if content == "" {
			continue
		}
		runes := []rune(content)
		if len(runes) > snippetRunes {
			return string(runes[:snippetRunes]) + "…"
		}
		return content
	}
	return ""
}
