package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Hindsight resources.
	uriScheme = "hindsight://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Detected tool storage, cache occupancy and connection pool usage",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// statusPayload is the JSON shape of the status resource.
type statusPayload struct {
	Version      string         `json:"version"`
	ConfigPath   string         `json:"config_path,omitempty"`
	GitAvailable bool           `json:"git_available"`
	Tools        []toolPresence `json:"tools"`
	Caches       []cachePayload `json:"caches"`
	Pools        []poolPayload  `json:"pools,omitempty"`
	GeneratedAt  string         `json:"generated_at"`
}

type toolPresence struct {
	Tool      string   `json:"tool"`
	Installed bool     `json:"installed"`
	Locations []string `json:"locations,omitempty"`
}

type cachePayload struct {
	Name      string  `json:"name"`
	Items     int     `json:"items"`
	Bytes     int64   `json:"bytes"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Evictions uint64  `json:"evictions"`
}

type poolPayload struct {
	Path  string `json:"path"`
	Live  int    `json:"live"`
	Idle  int    `json:"idle"`
	Opens uint64 `json:"opens"`
}

// handleStatusResource snapshots the runtime. Without a status service the
// resource reads as an empty object rather than an error, so clients can
// probe it unconditionally.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Status == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "{}",
			}},
		}, nil
	}

	report, err := s.ports.Status.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	data, err := json.MarshalIndent(statusFrom(report), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func statusFrom(report *domain.StatusReport) statusPayload {
	payload := statusPayload{
		Version:      report.Version,
		ConfigPath:   report.ConfigPath,
		GitAvailable: report.GitAvailable,
		Tools:        make([]toolPresence, len(report.Tools)),
		Caches:       make([]cachePayload, len(report.Caches)),
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
	}

	for i, tool := range report.Tools {
		presence := toolPresence{
			Tool:      tool.Tool.String(),
			Installed: tool.Installed(),
		}
		for _, loc := range tool.Locations {
			presence.Locations = append(presence.Locations, loc.Path)
		}
		payload.Tools[i] = presence
	}
	for i, cache := range report.Caches {
		payload.Caches[i] = cachePayload{
			Name:      cache.Name,
			Items:     cache.Items,
			Bytes:     cache.Bytes,
			Hits:      cache.Hits,
			Misses:    cache.Misses,
			HitRate:   cache.HitRate,
			Evictions: cache.Evictions,
		}
	}
	for _, pool := range report.Pools {
		payload.Pools = append(payload.Pools, poolPayload{
			Path:  pool.Path,
			Live:  pool.Live,
			Idle:  pool.Idle,
			Opens: pool.Opens,
		})
	}
	return payload
}
