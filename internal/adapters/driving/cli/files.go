package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

var (
	filesMax      int
	filesExts     []string
	filesFast     bool
	filesNoScores bool
	filesJSON     bool
)

var filesCmd = &cobra.Command{
	Use:   "files [path]",
	Short: "Rank project files by likely relevance",
	Long: `Walks the project tree and ranks files by how likely they are to matter
right now, combining file type, location, modification recency and git
commit activity. With --no-scores the listing is returned unranked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFiles,
}

func init() {
	filesCmd.Flags().IntVar(&filesMax, "max", 0, "maximum number of files (default 50)")
	filesCmd.Flags().StringSliceVar(&filesExts, "ext", nil, "restrict to extensions, e.g. go,md")
	filesCmd.Flags().BoolVar(&filesFast, "fast", false, "skip the git activity signal")
	filesCmd.Flags().BoolVar(&filesNoScores, "no-scores", false, "plain listing without relevance scoring")
	filesCmd.Flags().BoolVar(&filesJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	root := ""
	if len(args) > 0 {
		root = args[0]
	}

	req := domain.RankRequest{
		Root:       root,
		Extensions: filesExts,
		MaxFiles:   filesMax,
		WithScores: !filesNoScores,
		Fast:       filesFast,
	}

	result, err := fileService.Rank(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("file ranking failed: %w", err)
	}

	if filesJSON {
		return outputFilesJSON(cmd, result)
	}
	return outputFilesText(cmd, result)
}

// fileView is the JSON shape of one ranked file.
type fileView struct {
	Path       string   `json:"path"`
	Score      *float64 `json:"score,omitempty"`
	Size       int64    `json:"size"`
	ModifiedAt string   `json:"modified_at"`
	Commits    int      `json:"commits,omitempty"`
}

func outputFilesJSON(cmd *cobra.Command, result *domain.RankResult) error {
	payload := struct {
		Files        []fileView `json:"files"`
		Root         string     `json:"root"`
		Walked       int        `json:"walked"`
		Scored       bool       `json:"scored"`
		GitAvailable bool       `json:"git_available"`
		ElapsedMs    int64      `json:"elapsed_ms"`
	}{
		Files:        make([]fileView, len(result.Files)),
		Root:         result.Summary.Root,
		Walked:       result.Summary.Walked,
		Scored:       result.Summary.Scored,
		GitAvailable: result.Summary.GitAvailable,
		ElapsedMs:    result.Summary.Elapsed.Milliseconds(),
	}
	for i, f := range result.Files {
		payload.Files[i] = fileView{
			Path:       f.Path,
			Score:      f.Score,
			Size:       f.Size,
			ModifiedAt: f.ModTime.Format(time.RFC3339),
			Commits:    f.Commits,
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputFilesText(cmd *cobra.Command, result *domain.RankResult) error {
	if len(result.Files) == 0 {
		cmd.Println("No files found.")
		return nil
	}

	cmd.Printf("Ranked %d of %d files in %s under %s\n",
		len(result.Files), result.Summary.Walked,
		result.Summary.Elapsed.Round(time.Millisecond), result.Summary.Root)
	if result.Summary.Scored && !result.Summary.GitAvailable {
		cmd.Println("(git activity unavailable, ranking on remaining signals)")
	}
	cmd.Println()

	width := outputWidth()
	for _, f := range result.Files {
		if f.Score != nil {
			extra := ""
			if f.Commits > 0 {
				extra = fmt.Sprintf(", %d commits", f.Commits)
			}
			cmd.Printf("  %.2f  %s (%s%s)\n", *f.Score, clip(f.Path, width-24), humanAge(f.ModTime), extra)
		} else {
			cmd.Printf("  %s\n", clip(f.Path, width-4))
		}
	}
	return nil
}
