package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/api"
	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

type statusReport struct {
	Database    *database.Stats                `json:"database"`
	Review      map[database.SkipReason]int    `json:"review"`
	Operations  map[database.OperationType]int `json:"operations"`
	RecentScans []database.ScanRecord          `json:"recent_scans"`
	Daemon      *api.HealthResponse            `json:"daemon,omitempty"`
	DaemonError string                         `json:"daemon_error,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database statistics and daemon health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.Options{NoActivity: true})
			if err != nil {
				return err
			}
			defer a.Close()

			var st statusReport
			if st.Database, err = a.DB.GetStats(); err != nil {
				return err
			}
			if st.Review, err = a.DB.CountSkippedByReason(); err != nil {
				return err
			}
			if st.Operations, err = a.DB.GetOperationStats(); err != nil {
				return err
			}
			if st.RecentScans, err = a.DB.ListScans(5); err != nil {
				return err
			}

			st.Daemon, err = daemonHealth(cmd.Context(), a.Config)
			if err != nil {
				st.DaemonError = err.Error()
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), st)
			}
			printStatus(cmd.OutOrStdout(), st, a.Config.Detection.AutoResolveThreshold)
			return nil
		},
	}
}

// daemonHealth asks a running daemon for /health.
func daemonHealth(ctx context.Context, cfg *config.Config) (*api.HealthResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+cfg.Server.Addr+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon not reachable at %s", cfg.Server.Addr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}
	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}
	return &health, nil
}

func printStatus(w io.Writer, st statusReport, threshold float64) {
	ui.Section(w, "Database")
	fmt.Fprintf(w, "  Patterns:       %s\n", ui.FormatCount(st.Database.Patterns))
	fmt.Fprintf(w, "  Cached names:   %s\n", ui.FormatCount(st.Database.Detections))
	fmt.Fprintf(w, "  Scans:          %s\n", ui.FormatCount(st.Database.Scans))
	fmt.Fprintf(w, "  Operations:     %s\n", ui.FormatCount(st.Database.Operations))
	fmt.Fprintf(w, "  Pending review: %s\n", ui.FormatCount(st.Database.PendingReview))

	if len(st.Review) > 0 {
		reasons := make([]string, 0, len(st.Review))
		for r := range st.Review {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(w, "    %-16s %d\n", r, st.Review[database.SkipReason(r)])
		}
	}

	if len(st.RecentScans) > 0 {
		fmt.Fprintln(w)
		ui.Section(w, "Recent scans")
		table := ui.NewTable("When", "Root", "Files", "Detected", "Review", "Order")
		for _, s := range st.RecentScans {
			order := formatConvention("")
			if s.Recommendation != "" {
				order = fmt.Sprintf("%s %s", s.Recommendation, ui.Confidence(s.Confidence, threshold))
			}
			table.AddRow(ui.FormatAge(s.CreatedAt), s.Root, ui.FormatCount(s.Files),
				ui.FormatCount(s.Detected), ui.FormatCount(s.NeedsReview), order)
		}
		table.Fprint(w)
	}

	fmt.Fprintln(w)
	ui.Section(w, "Daemon")
	if st.Daemon == nil {
		fmt.Fprintf(w, "  %s %s\n", ui.Dim("○"), st.DaemonError)
		return
	}
	mark := ui.Success("●")
	if st.Daemon.Status != "healthy" {
		mark = ui.Warning("●")
	}
	fmt.Fprintf(w, "  %s %s (version %s, up %s)\n", mark, st.Daemon.Status, st.Daemon.Version, st.Daemon.Uptime)
	if sc := st.Daemon.Scanner; sc != nil {
		fmt.Fprintf(w, "  Last scan %s: %s, %s detected, %s to review\n", ui.FormatAge(sc.LastScan),
			ui.Plural(sc.Files, "file"), ui.FormatCount(sc.Detected), ui.Plural(sc.NeedsReview, "folder"))
		if sc.LastError != "" {
			fmt.Fprintf(w, "  %s %s\n", ui.Error("✗"), sc.LastError)
		}
	}
}
