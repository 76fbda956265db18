package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// mockRecallService implements driving.RecallService for command tests.
type mockRecallService struct {
	result *domain.RecallResult
	err    error
	got    domain.RecallRequest
}

func (m *mockRecallService) Recall(_ context.Context, req domain.RecallRequest) (*domain.RecallResult, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RecallResult{}, nil
}

// mockFileService implements driving.FileService for command tests.
type mockFileService struct {
	result *domain.RankResult
	err    error
	got    domain.RankRequest
}

func (m *mockFileService) Rank(_ context.Context, req domain.RankRequest) (*domain.RankResult, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RankResult{}, nil
}

// mockSettingsService implements driving.SettingsService for command tests.
type mockSettingsService struct {
	settings domain.Settings
	err      error
}

func (m *mockSettingsService) Load() (domain.Settings, error) {
	if m.err != nil {
		return domain.Settings{}, m.err
	}
	return m.settings, nil
}

// mockStatusService implements driving.StatusService for command tests.
type mockStatusService struct {
	report *domain.StatusReport
	err    error
}

func (m *mockStatusService) Status(context.Context) (*domain.StatusReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.StatusReport{}, nil
}

var errMockFailure = errors.New("mock failure")

// setupTestServices swaps all package services for mocks with canned data
// and returns a cleanup restoring the originals.
func setupTestServices() func() {
	oldRecall := recallService
	oldFiles := fileService
	oldStatus := statusService

	score := 0.82
	fileScore := 0.67
	updated := time.Now().Add(-3 * time.Hour)

	recallService = &mockRecallService{result: &domain.RecallResult{
		Summary: domain.RecallSummary{
			Statuses: []domain.ToolStatus{
				{Tool: domain.ToolClaude, State: domain.ToolStateOK, Conversations: 1},
				{Tool: domain.ToolCursor, State: domain.ToolStateUnavailable, Detail: "storage not found"},
			},
			Total:   1,
			Elapsed: 42 * time.Millisecond,
			Days:    30,
			Scored:  true,
		},
		Conversations: []domain.Conversation{{
			Tool:      domain.ToolClaude,
			ID:        "conv-1",
			Title:     "Fix the flaky watcher test",
			UpdatedAt: updated,
			Type:      domain.TypeDebugging,
			Score:     &score,
			Messages: []domain.Message{
				{Role: domain.RoleUser, Content: "the watcher test fails intermittently"},
				{Role: domain.RoleAssistant, Content: "let's look at the event loop"},
			},
			Workspace: domain.Workspace{ProjectRoot: "/home/dev/proj"},
		}},
	}}

	fileService = &mockFileService{result: &domain.RankResult{
		Summary: domain.RankSummary{
			Root:         "/home/dev/proj",
			Walked:       12,
			Elapsed:      7 * time.Millisecond,
			Scored:       true,
			GitAvailable: true,
		},
		Files: []domain.FileRecord{{
			Path:    "internal/watch/watcher.go",
			Size:    2048,
			ModTime: updated,
			Commits: 4,
			Score:   &fileScore,
		}},
	}}

	statusService = &mockStatusService{report: &domain.StatusReport{
		Version:      "test",
		ConfigPath:   "/home/dev/.config/hindsight/config.toml",
		GitAvailable: true,
		Tools: []domain.ToolPresence{
			{Tool: domain.ToolClaude, Locations: []domain.SourceLocation{{
				Tool: domain.ToolClaude, Path: "/home/dev/.claude/projects",
			}}},
			{Tool: domain.ToolCursor},
			{Tool: domain.ToolWindsurf},
		},
		Caches: []domain.CacheUsage{
			{Name: "conversations", Items: 3, Bytes: 4096, Hits: 9, Misses: 3, HitRate: 0.75},
		},
		GeneratedAt: time.Now(),
	}}

	return func() {
		recallService = oldRecall
		fileService = oldFiles
		statusService = oldStatus
	}
}
