package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show detected tools, caches and runtime health",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	report, err := statusService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(statusViewFrom(report), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("hindsight %s\n", report.Version)
	if report.ConfigPath != "" {
		cmd.Printf("config: %s\n", report.ConfigPath)
	}
	cmd.Printf("git: %s\n", yesNo(report.GitAvailable))
	cmd.Println()

	cmd.Println("Tools:")
	for _, tool := range report.Tools {
		if !tool.Installed() {
			cmd.Printf("  %-10s not detected\n", tool.Tool)
			continue
		}
		cmd.Printf("  %-10s %d storage location(s)\n", tool.Tool, len(tool.Locations))
		for _, loc := range tool.Locations {
			cmd.Printf("             %s\n", loc.Path)
		}
	}

	if len(report.Caches) > 0 {
		cmd.Println()
		cmd.Println("Caches:")
		for _, c := range report.Caches {
			cmd.Printf("  %-14s %4d items  %8s  %5.1f%% hit rate  (%d evictions)\n",
				c.Name, c.Items, humanBytes(c.Bytes), c.HitRate*100, c.Evictions)
		}
	}

	if len(report.Pools) > 0 {
		cmd.Println()
		cmd.Println("Database pools:")
		for _, p := range report.Pools {
			cmd.Printf("  %d live / %d idle / %d opened  %s\n", p.Live, p.Idle, p.Opens, p.Path)
		}
	}
	return nil
}

// statusView is the JSON shape of the status report.
type statusView struct {
	Version      string           `json:"version"`
	ConfigPath   string           `json:"config_path,omitempty"`
	GitAvailable bool             `json:"git_available"`
	Tools        []toolPresView   `json:"tools"`
	Caches       []cacheUsageView `json:"caches,omitempty"`
	Pools        []poolUsageView  `json:"pools,omitempty"`
	GeneratedAt  string           `json:"generated_at"`
}

type toolPresView struct {
	Tool      string   `json:"tool"`
	Installed bool     `json:"installed"`
	Locations []string `json:"locations,omitempty"`
}

type cacheUsageView struct {
	Name      string  `json:"name"`
	Items     int     `json:"items"`
	Bytes     int64   `json:"bytes"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Evictions uint64  `json:"evictions"`
}

type poolUsageView struct {
	Path  string `json:"path"`
	Live  int    `json:"live"`
	Idle  int    `json:"idle"`
	Opens uint64 `json:"opens"`
}

func statusViewFrom(report *domain.StatusReport) statusView {
	view := statusView{
		Version:      report.Version,
		ConfigPath:   report.ConfigPath,
		GitAvailable: report.GitAvailable,
		Tools:        make([]toolPresView, len(report.Tools)),
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
	}
	for i, tool := range report.Tools {
		pres := toolPresView{Tool: tool.Tool.String(), Installed: tool.Installed()}
		for _, loc := range tool.Locations {
			pres.Locations = append(pres.Locations, loc.Path)
		}
		view.Tools[i] = pres
	}
	for _, c := range report.Caches {
		view.Caches = append(view.Caches, cacheUsageView{
			Name:      c.Name,
			Items:     c.Items,
			Bytes:     c.Bytes,
			Hits:      c.Hits,
			Misses:    c.Misses,
			HitRate:   c.HitRate,
			Evictions: c.Evictions,
		})
	}
	for _, p := range report.Pools {
		view.Pools = append(view.Pools, poolUsageView{Path: p.Path, Live: p.Live, Idle: p.Idle, Opens: p.Opens})
	}
	return view
}

func yesNo(b bool) string {
	if b {
		return "available"
	}
	return "unavailable"
}

// humanBytes renders a byte count with a binary unit suffix.
func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
