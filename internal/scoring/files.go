package scoring

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

// fileHalfLife is the recency half-life for file modification times, in
// days. Files churn faster than conversations, so it is shorter.
const fileHalfLife = 3.0

// commitHalfLife is the recency half-life for the last commit touching a
// file, in days.
const commitHalfLife = 7.0

// Blend weights for the file score. With the commit-activity signal absent
// (fast mode, no repository, or git not installed) the remaining terms are
// renormalised so both paths produce scores on the same [0, 1] scale.
const (
	fileWeightType    = 0.30
	fileWeightDir     = 0.20
	fileWeightRecency = 0.30
	fileWeightGit     = 0.20
)

// Extension weight bands.
const (
	extWeightSource  = 1.0
	extWeightScript  = 0.85
	extWeightConfig  = 0.7
	extWeightDoc     = 0.5
	extWeightDefault = 0.3
)

// Directory signal levels.
const (
	dirSignalSource  = 1.0
	dirSignalTop     = 0.7
	dirSignalTest    = 0.6
	dirSignalNeutral = 0.5
	dirSignalJunk    = 0.1
)

// extensionWeights maps lowercase extensions (without the dot) onto weight
// bands. Source code outweighs scripts, scripts outweigh configuration,
// and prose trails everything.
var extensionWeights = map[string]float64{
	"go": extWeightSource, "py": extWeightSource, "ts": extWeightSource,
	"tsx": extWeightSource, "js": extWeightSource, "jsx": extWeightSource,
	"rs": extWeightSource, "java": extWeightSource, "rb": extWeightSource,
	"c": extWeightSource, "h": extWeightSource, "cpp": extWeightSource,
	"cc": extWeightSource, "hpp": extWeightSource, "cs": extWeightSource,
	"swift": extWeightSource, "kt": extWeightSource, "scala": extWeightSource,
	"php": extWeightSource, "ex": extWeightSource, "exs": extWeightSource,

	"sh": extWeightScript, "bash": extWeightScript, "sql": extWeightScript,
	"proto": extWeightScript, "graphql": extWeightScript,

	"yaml": extWeightConfig, "yml": extWeightConfig, "toml": extWeightConfig,
	"json": extWeightConfig, "tf": extWeightConfig, "ini": extWeightConfig,
	"cfg": extWeightConfig,

	"md": extWeightDoc, "rst": extWeightDoc, "txt": extWeightDoc,
	"adoc": extWeightDoc,
}

// sourceDirs are conventional source-tree directory names.
var sourceDirs = map[string]struct{}{
	"src": {}, "internal": {}, "pkg": {}, "lib": {},
	"app": {}, "cmd": {}, "core": {}, "api": {},
}

// testDirs hold tests: useful, but less often what the caller is after.
var testDirs = map[string]struct{}{
	"test": {}, "tests": {}, "spec": {}, "__tests__": {},
}

// junkDirs are build output and vendored trees. The walker normally prunes
// these via ignore globs; the weight covers files that slip past a custom
// glob set.
var junkDirs = map[string]struct{}{
	"node_modules": {}, "vendor": {}, "dist": {}, "build": {},
	"target": {}, "out": {}, "obj": {}, "coverage": {},
	"__pycache__": {}, ".git": {}, ".cache": {},
}

// File scores one file record at a given instant. The record's TypeWeight,
// ModTime, Commits, and LastCommit must already be populated; withGit says
// whether the commit-activity signal was actually computed, so that "zero
// commits" and "signal skipped" score differently.
func File(rec *domain.FileRecord, now time.Time, withGit bool) float64 {
	typeTerm := rec.TypeWeight
	dirTerm := DirectorySignal(rec.Path)
	recencyTerm := FileRecency(rec.ModTime, now)
	if !withGit {
		sum := fileWeightType*typeTerm + fileWeightDir*dirTerm + fileWeightRecency*recencyTerm
		return sum / (fileWeightType + fileWeightDir + fileWeightRecency)
	}
	gitTerm := commitActivity(rec.Commits, rec.LastCommit, now)
	return fileWeightType*typeTerm + fileWeightDir*dirTerm +
		fileWeightRecency*recencyTerm + fileWeightGit*gitTerm
}

// ExtensionWeight returns the weight band for a path's extension.
func ExtensionWeight(path string) float64 {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if w, ok := extensionWeights[ext]; ok {
		return w
	}
	return extWeightDefault
}

// DirectorySignal scores a relative path by where it lives. Conventional
// source directories rank highest, tests below them, build output and
// vendored trees at the floor. Deeper nesting shaves a little off, so a
// shallow file beats an otherwise identical deeply buried one.
func DirectorySignal(rel string) float64 {
	dir := filepath.ToSlash(filepath.Dir(filepath.ToSlash(rel)))
	if dir == "." || dir == "" {
		return dirSignalTop
	}
	parts := strings.Split(dir, "/")
	signal := dirSignalNeutral
	for _, part := range parts {
		if _, ok := junkDirs[part]; ok {
			return dirSignalJunk
		}
		if _, ok := sourceDirs[part]; ok && signal < dirSignalSource {
			signal = dirSignalSource
		}
		if _, ok := testDirs[part]; ok && signal < dirSignalTest {
			signal = dirSignalTest
		}
	}
	penalty := 0.04 * float64(len(parts)-1)
	if penalty > 0.2 {
		penalty = 0.2
	}
	signal -= penalty
	if signal < dirSignalJunk {
		return dirSignalJunk
	}
	return signal
}

// FileRecency maps a modification time onto (0, 1] with the file half-life.
func FileRecency(modTime, now time.Time) float64 {
	if modTime.IsZero() {
		return 0
	}
	return decay(daysBetween(modTime, now), fileHalfLife)
}

// commitActivity blends commit volume and last-commit recency. Volume
// saturates: the difference between one and three commits matters far more
// than the difference between twenty and thirty.
func commitActivity(commits int, lastCommit, now time.Time) float64 {
	if commits <= 0 {
		return 0
	}
	volume := 1 - math.Exp(-float64(commits)/3)
	recency := 0.0
	if !lastCommit.IsZero() {
		recency = decay(daysBetween(lastCommit, now), commitHalfLife)
	}
	return 0.5*volume + 0.5*recency
}
