package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

var (
	recallDays      int
	recallLimit     int
	recallTools     []string
	recallTypes     []string
	recallMinScore  float64
	recallFast      bool
	recallJSON      bool
	recallWorkspace string
)

var recallCmd = &cobra.Command{
	Use:   "recall [query]",
	Short: "Recall prior assistant conversations",
	Long: `Aggregates conversation history from every detected tool, filters it
and returns the most relevant sessions first. With no query the most
recent conversations in the lookback window are listed.

Tools that cannot be read degrade to a status line; a broken tool never
fails the whole recall.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecall,
}

func init() {
	recallCmd.Flags().IntVar(&recallDays, "days", 0, "lookback window in days (default 30)")
	recallCmd.Flags().IntVarP(&recallLimit, "limit", "n", 0, "maximum number of results (default 10)")
	recallCmd.Flags().StringSliceVar(&recallTools, "tools", nil, "restrict to tools: claude, cursor, windsurf")
	recallCmd.Flags().StringSliceVar(&recallTypes, "types", nil, "restrict to types: debugging, architecture, code_review, learning, general")
	recallCmd.Flags().Float64Var(&recallMinScore, "min-score", 0, "drop results scoring below this threshold")
	recallCmd.Flags().BoolVar(&recallFast, "fast", false, "skip scoring signals that need extra I/O")
	recallCmd.Flags().StringVar(&recallWorkspace, "workspace", "", "only conversations for this project root")
	recallCmd.Flags().BoolVar(&recallJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recallCmd)
}

func runRecall(cmd *cobra.Command, args []string) error {
	if recallService == nil {
		return errors.New("recall service not configured")
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	req := domain.RecallRequest{
		Query:     query,
		Days:      recallDays,
		MinScore:  recallMinScore,
		Limit:     recallLimit,
		Fast:      recallFast,
		Workspace: recallWorkspace,
	}
	for _, name := range recallTools {
		tool, err := domain.ParseTool(name)
		if err != nil {
			return fmt.Errorf("unknown tool %q", name)
		}
		req.Tools = append(req.Tools, tool)
	}
	for _, name := range recallTypes {
		typ, err := domain.ParseConversationType(name)
		if err != nil {
			return fmt.Errorf("unknown conversation type %q", name)
		}
		req.Types = append(req.Types, typ)
	}

	result, err := recallService.Recall(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("recall failed: %w", err)
	}

	if recallJSON {
		return outputRecallJSON(cmd, result)
	}
	return outputRecallText(cmd, result)
}

// recallView is the JSON shape of one recalled conversation.
type recallView struct {
	Tool      string   `json:"tool"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	UpdatedAt string   `json:"updated_at"`
	Type      string   `json:"type"`
	Score     *float64 `json:"score,omitempty"`
	Messages  int      `json:"messages"`
	Project   string   `json:"project,omitempty"`
}

type recallStatusView struct {
	Tool          string `json:"tool"`
	State         string `json:"state"`
	Conversations int    `json:"conversations"`
	Detail        string `json:"detail,omitempty"`
}

func outputRecallJSON(cmd *cobra.Command, result *domain.RecallResult) error {
	payload := struct {
		Conversations []recallView       `json:"conversations"`
		Statuses      []recallStatusView `json:"statuses"`
		Total         int                `json:"total"`
		Scored        bool               `json:"scored"`
		ElapsedMs     int64              `json:"elapsed_ms"`
	}{
		Conversations: make([]recallView, len(result.Conversations)),
		Statuses:      make([]recallStatusView, len(result.Summary.Statuses)),
		Total:         result.Summary.Total,
		Scored:        result.Summary.Scored,
		ElapsedMs:     result.Summary.Elapsed.Milliseconds(),
	}
	for i := range result.Conversations {
		conv := &result.Conversations[i]
		payload.Conversations[i] = recallView{
			Tool:      conv.Tool.String(),
			ID:        conv.ID,
			Title:     conv.Title,
			UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
			Type:      conv.Type.String(),
			Score:     conv.Score,
			Messages:  conv.MessageCount(),
			Project:   conv.Workspace.ProjectRoot,
		}
	}
	for i, st := range result.Summary.Statuses {
		payload.Statuses[i] = recallStatusView{
			Tool:          st.Tool.String(),
			State:         string(st.State),
			Conversations: st.Conversations,
			Detail:        st.Detail,
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRecallText(cmd *cobra.Command, result *domain.RecallResult) error {
	if len(result.Conversations) == 0 {
		cmd.Println("No conversations found.")
		outputToolStatuses(cmd, result.Summary.Statuses)
		return nil
	}

	cmd.Printf("Recalled %d conversations in %s (window %dd)\n\n",
		result.Summary.Total, result.Summary.Elapsed.Round(time.Millisecond), result.Summary.Days)

	width := outputWidth()
	for i := range result.Conversations {
		conv := &result.Conversations[i]
		score := ""
		if conv.Score != nil {
			score = fmt.Sprintf(", %.2f", *conv.Score)
		}
		cmd.Printf("  [%d] %s\n", i+1, clip(conv.Title, width-8))
		cmd.Printf("      %s, %s%s · updated %s · %d messages\n",
			conv.Tool, conv.Type, score, humanAge(conv.UpdatedAt), conv.MessageCount())
		if conv.Workspace.ProjectRoot != "" {
			cmd.Printf("      %s\n", clip(conv.Workspace.ProjectRoot, width-6))
		}
		cmd.Println()
	}

	outputToolStatuses(cmd, result.Summary.Statuses)
	return nil
}

func outputToolStatuses(cmd *cobra.Command, statuses []domain.ToolStatus) {
	if len(statuses) == 0 {
		return
	}
	cmd.Println("Tool status:")
	for _, st := range statuses {
		line := fmt.Sprintf("  %-10s %-12s %d", st.Tool, st.State, st.Conversations)
		if st.Detail != "" {
			line += "  (" + st.Detail + ")"
		}
		cmd.Println(line)
	}
}

// outputWidth returns the terminal width, or a sane default when stdout is
// not a terminal.
func outputWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return 100
}

// clip truncates s to at most max runes.
func clip(s string, max int) string {
	if max < 4 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// humanAge renders how long ago t was, coarsely.
func humanAge(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	age := time.Since(t)
	switch {
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
