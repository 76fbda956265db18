package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
	"github.com/custodia-labs/hindsight-cli/internal/scoring"
)

// Ensure FileService implements the interface.
var _ driving.FileService = (*FileService)(nil)

// walkCtxStride is how many entries the walker visits between context
// checks.
const walkCtxStride = 256

// prunedDirs are directory names never worth descending into, whatever the
// configured ignore globs say.
var prunedDirs = map[string]struct{}{
	".git": {}, "node_modules": {}, "vendor": {}, "dist": {},
	"build": {}, "target": {}, "__pycache__": {}, ".cache": {},
}

// FileService ranks project files by contextual relevance.
type FileService struct {
	git       driven.GitActivity
	metaCache driven.Cache
	settings  domain.Settings

	// now is the clock used for scoring; injectable so tests pin it.
	now func() time.Time
}

// NewFileService creates a file-ranking service. The git signal and the
// metadata cache are both optional; missing either degrades the ranking,
// never fails it.
func NewFileService(git driven.GitActivity, metaCache driven.Cache, settings domain.Settings) *FileService {
	return &FileService{
		git:       git,
		metaCache: metaCache,
		settings:  settings,
		now:       time.Now,
	}
}

// Rank walks the root, filters by extension, scores the survivors and
// returns them best first. With scoring disabled the listing comes back in
// walk order with nil scores.
func (s *FileService) Rank(ctx context.Context, req domain.RankRequest) (*domain.RankResult, error) {
	start := time.Now()

	logger.Section("File Ranking")

	root, err := s.resolveRoot(req.Root)
	if err != nil {
		return nil, err
	}
	logger.Debug("Root: %s, max files: %d, scores: %t, fast: %t",
		root, req.EffectiveMaxFiles(), req.WithScores, req.Fast)

	listing, err := s.listing(ctx, root)
	if err != nil {
		return nil, err
	}

	records := make([]domain.FileRecord, 0, len(listing))
	for _, rec := range listing {
		if !req.WantsExtension(filepath.Ext(rec.Path)) {
			continue
		}
		records = append(records, rec)
	}
	logger.Debug("Candidates: %d of %d listed", len(records), len(listing))

	summary := domain.RankSummary{Root: root, Walked: len(records)}

	if req.WithScores {
		withGit := s.applyActivity(ctx, root, records, req.Fast)
		now := s.now()
		for i := range records {
			rec := &records[i]
			rec.TypeWeight = scoring.ExtensionWeight(rec.Path)
			score := scoring.File(rec, now, withGit)
			rec.Score = &score
			rec.Tier = scoring.Tier(score)
		}
		sort.SliceStable(records, func(i, j int) bool {
			if *records[i].Score != *records[j].Score {
				return *records[i].Score > *records[j].Score
			}
			if !records[i].ModTime.Equal(records[j].ModTime) {
				return records[i].ModTime.After(records[j].ModTime)
			}
			return records[i].Path < records[j].Path
		})
		summary.Scored = !req.Fast
		summary.GitAvailable = withGit
	}

	if limit := req.EffectiveMaxFiles(); len(records) > limit {
		records = records[:limit]
	}

	summary.Elapsed = time.Since(start)
	logger.Info("Ranked %d files", len(records))

	return &domain.RankResult{Summary: summary, Files: records}, nil
}

// applyActivity attaches commit counts and last-commit times to the
// records, and reports whether the signal was actually computed. Fast mode
// and any git failure degrade to false; file scores then renormalise
// without the term.
func (s *FileService) applyActivity(ctx context.Context, root string, records []domain.FileRecord, fast bool) bool {
	if fast || s.git == nil {
		return false
	}
	if !s.git.Available() {
		logger.Debug("git not installed, skipping activity signal")
		return false
	}

	activity, err := s.git.Activity(ctx, root, s.settings.Git.LookbackDays)
	if err != nil {
		logger.Warn("commit activity unavailable: %v", err)
		return false
	}

	for i := range records {
		if fa, ok := activity[records[i].Path]; ok {
			records[i].Commits = fa.Commits
			records[i].LastCommit = fa.LastCommit
		}
	}
	return true
}

// listing returns the walked file records for root, through the metadata
// cache. The key carries the root's modification time; edits deeper in the
// tree that leave it unchanged are bounded by the cache TTL instead.
func (s *FileService) listing(ctx context.Context, root string) ([]domain.FileRecord, error) {
	key := listingCacheKey(root)

	var cached []domain.FileRecord
	if s.metaCache != nil && s.metaCache.Get(key, &cached) {
		logger.Debug("listing cache hit: %d files", len(cached))
		return cached, nil
	}

	records, err := s.walk(ctx, root)
	if err != nil {
		return nil, err
	}

	if s.metaCache != nil {
		if err := s.metaCache.Put(key, records, s.settings.MetadataCache.TTL); err != nil {
			logger.Debug("listing cache rejected %s: %v", root, err)
		}
	}
	return records, nil
}

// walk collects the regular files under root that survive the ignore
// rules. Unreadable entries are skipped, not fatal; only the caller's
// context can abort the walk.
func (s *FileService) walk(ctx context.Context, root string) ([]domain.FileRecord, error) {
	var records []domain.FileRecord
	visited := 0

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("walk: %s: %v", p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		visited++
		if visited%walkCtxStride == 0 {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
		}

		rel, rerr := filepath.Rel(root, p)
		if rerr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.skipDir(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || s.ignored(rel) {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			return nil
		}
		records = append(records, domain.FileRecord{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return records, nil
}

// skipDir prunes hidden directories, the fixed junk set, and anything a
// configured glob matches outright.
func (s *FileService) skipDir(rel string) bool {
	base := path.Base(rel)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if _, ok := prunedDirs[base]; ok {
		return true
	}
	return s.ignored(rel)
}

func (s *FileService) ignored(rel string) bool {
	for _, glob := range s.settings.Files.IgnoreGlobs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}
	return false
}

func (s *FileService) resolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("root %s: %w", abs, domain.ErrSourceUnavailable)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory: %w", abs, domain.ErrInvalidInput)
	}
	return abs, nil
}

// listingCacheKey keys a walked listing by root and its modification time.
func listingCacheKey(root string) string {
	var mtime int64
	if info, err := os.Stat(root); err == nil {
		mtime = info.ModTime().UnixNano()
	}
	return fmt.Sprintf("files/%s#%d", root, mtime)
}
