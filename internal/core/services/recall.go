package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
	"github.com/custodia-labs/hindsight-cli/internal/scoring"
)

// Ensure RecallService implements the interface.
var _ driving.RecallService = (*RecallService)(nil)

// toolOutcome carries one adapter's contribution back over the fan-out
// channel.
type toolOutcome struct {
	tool   domain.Tool
	convs  []domain.Conversation
	status domain.ToolStatus
}

// RecallService aggregates conversation history across tool adapters.
type RecallService struct {
	sources   []driven.HistorySource
	convCache driven.Cache
	metaCache driven.Cache
	settings  domain.Settings

	// now is the clock used for filtering and scoring; injectable so
	// tests pin it.
	now func() time.Time
}

// NewRecallService creates a recall service over the given adapters.
// Both caches are optional; a nil cache degrades to re-parsing every call.
func NewRecallService(
	sources []driven.HistorySource,
	convCache driven.Cache,
	metaCache driven.Cache,
	settings domain.Settings,
) *RecallService {
	return &RecallService{
		sources:   sources,
		convCache: convCache,
		metaCache: metaCache,
		settings:  settings,
		now:       time.Now,
	}
}

// Recall runs the aggregation pipeline: fan out to the selected adapters,
// merge their conversations, filter, score, rank and truncate. A failing
// tool degrades to a status entry; the call itself fails only when the
// caller's context ends first.
func (s *RecallService) Recall(ctx context.Context, req domain.RecallRequest) (*domain.RecallResult, error) {
	start := time.Now()

	logger.Section("Conversation Recall")
	logger.Debug("Query: %q", req.Query)

	tools := req.EffectiveTools()
	days := req.EffectiveDays()
	limit := req.EffectiveLimit()
	logger.Debug("Tools: %v, days: %d, limit: %d, fast: %t", tools, days, limit, req.Fast)

	outcomes := s.collectAll(ctx, tools)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recall aborted: %w", err)
	}

	// Assemble in request order so statuses and the merge are stable.
	statuses := make([]domain.ToolStatus, 0, len(tools))
	var merged []domain.Conversation
	for _, tool := range tools {
		out := outcomes[tool]
		statuses = append(statuses, out.status)
		merged = append(merged, out.convs...)
	}
	logger.Debug("Merged %d conversations from %d tools", len(merged), len(tools))

	now := s.now()
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	kept := s.filter(merged, &req, cutoff)
	logger.Debug("After filtering: %d conversations", len(kept))

	s.score(kept, req.Query, now)
	kept = s.rank(kept, req.MinScore, limit)
	logger.Info("Recall complete: %d results", len(kept))

	return &domain.RecallResult{
		Summary: domain.RecallSummary{
			Statuses: statuses,
			Total:    len(kept),
			Elapsed:  time.Since(start),
			Query:    req.Query,
			Days:     days,
			Types:    req.Types,
			Scored:   !req.Fast,
		},
		Conversations: kept,
	}, nil
}

// InvalidateTool drops every cached batch for the tool. The storage
// watcher calls this when the tool's files change on disk; the next recall
// re-parses them.
func (s *RecallService) InvalidateTool(tool domain.Tool) {
	if s.convCache == nil {
		return
	}
	s.convCache.Flush(conversationCachePrefix(tool))
}

// collectAll fans out one goroutine per tool and gathers every outcome.
// Each adapter runs under its own deadline, so a hung tool costs its own
// budget and nothing more.
func (s *RecallService) collectAll(ctx context.Context, tools []domain.Tool) map[domain.Tool]toolOutcome {
	results := make(chan toolOutcome, len(tools))

	var wg sync.WaitGroup
	for _, tool := range tools {
		source := s.sourceFor(tool)
		if source == nil {
			results <- toolOutcome{tool: tool, status: domain.ToolStatus{
				Tool:   tool,
				State:  domain.ToolStateUnavailable,
				Detail: "no adapter registered",
			}}
			continue
		}

		wg.Add(1)
		go func(src driven.HistorySource) {
			defer wg.Done()
			results <- s.collect(ctx, src)
		}(source)
	}
	wg.Wait()
	close(results)

	outcomes := make(map[domain.Tool]toolOutcome, len(tools))
	for out := range results {
		outcomes[out.tool] = out
	}
	return outcomes
}

// collect reads everything one adapter has, under the per-adapter budget.
func (s *RecallService) collect(ctx context.Context, source driven.HistorySource) toolOutcome {
	tool := source.Tool()
	tctx, cancel := context.WithTimeout(ctx, s.settings.Adapter.Timeout)
	defer cancel()

	locs, err := source.Locate(tctx)
	if err != nil {
		logger.Warn("%s: locate failed: %v", tool, err)
		return toolOutcome{tool: tool, status: statusForError(tool, tctx, err)}
	}
	if len(locs) == 0 {
		logger.Debug("%s: no storage found", tool)
		return toolOutcome{tool: tool, status: domain.ToolStatus{
			Tool:   tool,
			State:  domain.ToolStateUnavailable,
			Detail: "no storage found",
		}}
	}

	var convs []domain.Conversation
	var failures []string
	for _, loc := range locs {
		batch, err := s.parseLocation(tctx, source, loc)
		convs = append(convs, batch...)
		if err == nil {
			continue
		}
		if tctx.Err() != nil {
			// Budget exhausted: keep the partials already gathered.
			logger.Warn("%s: budget exceeded, returning %d partial conversations", tool, len(convs))
			return toolOutcome{tool: tool, convs: convs, status: domain.ToolStatus{
				Tool:          tool,
				State:         domain.ToolStateTimeout,
				Conversations: len(convs),
				Detail:        "adapter budget exceeded",
			}}
		}
		logger.Warn("%s: %s: %v", tool, loc.Path, err)
		failures = append(failures, fmt.Sprintf("%s: %v", loc.Path, err))
	}

	status := domain.ToolStatus{Tool: tool, Conversations: len(convs)}
	switch {
	case len(convs) > 0:
		status.State = domain.ToolStateOK
		if len(failures) > 0 {
			status.Detail = fmt.Sprintf("partial: %s", strings.Join(failures, "; "))
		}
	case len(failures) > 0:
		status.State = domain.ToolStateError
		status.Detail = strings.Join(failures, "; ")
	default:
		status.State = domain.ToolStateEmpty
	}
	return toolOutcome{tool: tool, convs: convs, status: status}
}

// parseLocation reads one storage location through the conversation cache.
// Classification happens before caching so cached batches carry their types.
func (s *RecallService) parseLocation(
	ctx context.Context, source driven.HistorySource, loc domain.SourceLocation,
) ([]domain.Conversation, error) {
	key := conversationCacheKey(loc)

	var cached []domain.Conversation
	if s.convCache != nil && s.convCache.Get(key, &cached) {
		logger.Debug("%s: cache hit for %s (%d conversations)", loc.Tool, loc.Path, len(cached))
		return cached, nil
	}

	batch, err := source.Parse(ctx, loc)
	if err != nil {
		return batch, err
	}
	for i := range batch {
		batch[i].Type = Classify(&batch[i])
	}

	if s.convCache != nil {
		if err := s.convCache.Put(key, batch, s.settings.ConversationCache.TTL); err != nil {
			logger.Debug("conversation cache rejected %s: %v", key, err)
		}
	}
	return batch, nil
}

// filter applies the in-memory request filters: lookback window, workspace
// scope, type selection, and the substring query.
func (s *RecallService) filter(
	convs []domain.Conversation, req *domain.RecallRequest, cutoff time.Time,
) []domain.Conversation {
	kept := make([]domain.Conversation, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		if c.UpdatedAt.Before(cutoff) {
			continue
		}
		if req.Workspace != "" && !c.Workspace.Matches(req.Workspace) {
			continue
		}
		if !req.WantsType(c.Type) {
			continue
		}
		if !c.MatchesQuery(req.Query) {
			continue
		}
		kept = append(kept, *c)
	}
	return kept
}

// score attaches a relevance score to every surviving conversation.
func (s *RecallService) score(convs []domain.Conversation, query string, now time.Time) {
	keywords := s.queryKeywords(query)
	for i := range convs {
		score := scoring.ConversationKeywords(&convs[i], keywords, now)
		convs[i].Score = &score
	}
}

// rank drops below-threshold results, orders the rest, and truncates.
// The sort chain is total: score, then recency, then tool name, then ID,
// so the same snapshot always produces the same ordering.
func (s *RecallService) rank(convs []domain.Conversation, minScore float64, limit int) []domain.Conversation {
	if minScore > 0 {
		kept := convs[:0]
		for i := range convs {
			if convs[i].Score != nil && *convs[i].Score >= minScore {
				kept = append(kept, convs[i])
			}
		}
		convs = kept
	}

	sort.SliceStable(convs, func(i, j int) bool {
		si, sj := scoreOf(&convs[i]), scoreOf(&convs[j])
		if si != sj {
			return si > sj
		}
		if !convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		}
		if convs[i].Tool != convs[j].Tool {
			return convs[i].Tool < convs[j].Tool
		}
		return convs[i].ID < convs[j].ID
	})

	if len(convs) > limit {
		convs = convs[:limit]
	}
	return convs
}

// queryKeywords extracts the query's keyword set through the metadata
// cache, so repeated recalls with the same query skip the extraction.
func (s *RecallService) queryKeywords(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	key := "keywords/" + strings.ToLower(query)
	var cached []string
	if s.metaCache != nil && s.metaCache.Get(key, &cached) {
		return cached
	}

	keywords := scoring.Keywords(query)
	if s.metaCache != nil {
		if err := s.metaCache.Put(key, keywords, s.settings.MetadataCache.TTL); err != nil {
			logger.Debug("keyword cache rejected %q: %v", query, err)
		}
	}
	return keywords
}

func (s *RecallService) sourceFor(tool domain.Tool) driven.HistorySource {
	for _, source := range s.sources {
		if source.Tool() == tool {
			return source
		}
	}
	return nil
}

func scoreOf(c *domain.Conversation) float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// statusForError maps a locate failure onto a tool state.
func statusForError(tool domain.Tool, ctx context.Context, err error) domain.ToolStatus {
	status := domain.ToolStatus{Tool: tool, Detail: err.Error()}
	switch {
	case ctx.Err() != nil:
		status.State = domain.ToolStateTimeout
		status.Detail = "adapter budget exceeded"
	case errors.Is(err, domain.ErrSourceUnavailable):
		status.State = domain.ToolStateUnavailable
	default:
		status.State = domain.ToolStateError
	}
	return status
}

// conversationCacheKey keys a parsed batch by tool, path and modification
// time, so a changed source naturally misses while the unchanged one hits.
func conversationCacheKey(loc domain.SourceLocation) string {
	var mtime int64
	if info, err := os.Stat(loc.Path); err == nil {
		mtime = info.ModTime().UnixNano()
	}
	return fmt.Sprintf("%s%s#%d", conversationCachePrefix(loc.Tool), loc.Path, mtime)
}

func conversationCachePrefix(tool domain.Tool) string {
	return fmt.Sprintf("conversations/%s/", tool)
}
