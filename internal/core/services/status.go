package services

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService snapshots the runtime for diagnostic surfaces.
type StatusService struct {
	version    string
	configPath string
	sources    []driven.HistorySource
	convCache  driven.Cache
	metaCache  driven.Cache
	pool       driven.DatabasePool
	git        driven.GitActivity
}

// NewStatusService creates a status service. Every dependency except the
// sources is optional; missing ones report as absent rather than failing.
func NewStatusService(
	version string,
	configPath string,
	sources []driven.HistorySource,
	convCache driven.Cache,
	metaCache driven.Cache,
	pool driven.DatabasePool,
	git driven.GitActivity,
) *StatusService {
	return &StatusService{
		version:    version,
		configPath: configPath,
		sources:    sources,
		convCache:  convCache,
		metaCache:  metaCache,
		pool:       pool,
		git:        git,
	}
}

// Status probes each tool's storage and snapshots cache and pool counters.
// A tool whose locate fails simply reports no locations.
func (s *StatusService) Status(ctx context.Context) (*domain.StatusReport, error) {
	logger.Section("Status Report")

	report := &domain.StatusReport{
		Version:      s.version,
		ConfigPath:   s.configPath,
		GitAvailable: s.git != nil && s.git.Available(),
		GeneratedAt:  time.Now(),
	}

	for _, source := range s.sources {
		tool := source.Tool()
		locs, err := source.Locate(ctx)
		if err != nil {
			logger.Warn("%s: locate failed: %v", tool, err)
			locs = nil
		}
		report.Tools = append(report.Tools, domain.ToolPresence{Tool: tool, Locations: locs})
	}

	report.Caches = []domain.CacheUsage{
		cacheUsage("conversations", s.convCache),
		cacheUsage("metadata", s.metaCache),
	}

	if s.pool != nil {
		stats := s.pool.Stats()
		paths := make([]string, 0, len(stats))
		for p := range stats {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			ps := stats[p]
			report.Pools = append(report.Pools, domain.PoolUsage{
				Path:  p,
				Live:  ps.Live,
				Idle:  ps.Idle,
				Opens: ps.Opens,
			})
		}
	}

	return report, nil
}

func cacheUsage(name string, cache driven.Cache) domain.CacheUsage {
	usage := domain.CacheUsage{Name: name}
	if cache == nil {
		return usage
	}
	stats := cache.Stats()
	usage.Items = stats.Items
	usage.Bytes = stats.Bytes
	usage.Hits = stats.Hits
	usage.Misses = stats.Misses
	usage.HitRate = stats.HitRate()
	usage.Evictions = stats.Evictions
	return usage
}
