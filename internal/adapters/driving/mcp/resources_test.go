package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil status service returns empty object", func(t *testing.T) {
		server := newTestServer(t, &Ports{Recall: &mockRecallService{}, Files: &mockFileService{}})

		req := makeReadResourceRequest("hindsight://status")
		result, err := server.handleStatusResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "{}", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns status snapshot", func(t *testing.T) {
		mockStatus := &mockStatusService{
			report: &domain.StatusReport{
				Version:      "1.2.3",
				ConfigPath:   "/home/dev/.hindsight/config.toml",
				GitAvailable: true,
				Tools: []domain.ToolPresence{
					{
						Tool:      domain.ToolClaude,
						Locations: []domain.SourceLocation{{Tool: domain.ToolClaude, Path: "/home/dev/.claude/projects/api"}},
					},
					{Tool: domain.ToolCursor},
				},
				Caches: []domain.CacheUsage{
					{Name: "conversations", Items: 3, Bytes: 4096, Hits: 10, Misses: 2, HitRate: 10.0 / 12.0},
				},
				Pools: []domain.PoolUsage{
					{Path: "/ws/state.vscdb", Live: 2, Idle: 1, Opens: 4},
				},
				GeneratedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			},
		}
		server := newTestServer(t, &Ports{
			Recall: &mockRecallService{},
			Files:  &mockFileService{},
			Status: mockStatus,
		})

		req := makeReadResourceRequest("hindsight://status")
		result, err := server.handleStatusResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var payload statusPayload
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &payload))
		assert.Equal(t, "1.2.3", payload.Version)
		assert.True(t, payload.GitAvailable)
		require.Len(t, payload.Tools, 2)
		assert.Equal(t, "claude", payload.Tools[0].Tool)
		assert.True(t, payload.Tools[0].Installed)
		assert.Equal(t, []string{"/home/dev/.claude/projects/api"}, payload.Tools[0].Locations)
		assert.False(t, payload.Tools[1].Installed)
		require.Len(t, payload.Caches, 1)
		assert.Equal(t, 3, payload.Caches[0].Items)
		assert.InDelta(t, 10.0/12.0, payload.Caches[0].HitRate, 1e-9)
		require.Len(t, payload.Pools, 1)
		assert.Equal(t, 2, payload.Pools[0].Live)
		assert.Equal(t, "2026-03-10T12:00:00Z", payload.GeneratedAt)
	})

	t.Run("returns error on status failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Recall: &mockRecallService{},
			Files:  &mockFileService{},
			Status: &mockStatusService{err: errors.New("status failed")},
		})

		req := makeReadResourceRequest("hindsight://status")
		_, err := server.handleStatusResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status failed")
	})
}
