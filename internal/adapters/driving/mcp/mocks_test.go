package mcp

import (
	"context"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// mockRecallService is a mock implementation of driving.RecallService.
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

// mockFileService is a mock implementation of driving.FileService.
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

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	report *domain.StatusReport
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.StatusReport, error) {
	return m.report, m.err
}
