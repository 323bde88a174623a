package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

type scanFlags struct {
	recursive   bool
	interactive bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", true, "scan subdirectories")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "ask for the date format of folders that need review")
}

func newScanCmd() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Detect timestamps for every file under a directory",
		Long: `Scan a directory tree, infer each folder's day/month order from the
names it contains and detect every file's timestamp.

Folders whose order cannot be inferred are flagged for review and use the
configured date_format. With --interactive you choose for each of them.

Examples:
  stampwatch scan ~/Pictures
  stampwatch scan --recursive=false ~/Downloads
  stampwatch scan --json ~/Scans > report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.Options{NoActivity: true})
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := runScan(cmd.Context(), a, args[0], flags)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report, a.Config.Detection.AutoResolveThreshold)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// runScan scans root and, when asked, lets the user settle folders that
// need review.
func runScan(ctx context.Context, a *app.App, root string, flags scanFlags) (*scanner.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := a.Scanner
	if !flags.recursive {
		s = scanner.New(scanner.Options{
			Workers:           a.Config.Detection.Workers,
			Threshold:         a.Config.Detection.AutoResolveThreshold,
			DefaultConvention: a.Config.DateConvention(),
			Custom:            a.Registry,
			UseCache:          a.Config.Detection.CacheEnabled,
			Logger:            a.Logger,
		}, a.DB)
	}

	spinner := ui.NewSpinner("Scanning " + root)
	spinner.Start()
	report, err := s.Scan(ctx, root)
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	if flags.interactive && ui.IsInteractive() {
		if err := settleInteractively(s, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func settleInteractively(s *scanner.Scanner, report *scanner.Report) error {
	for i := range report.Directories {
		dir := &report.Directories[i]
		if !dir.NeedsReview {
			continue
		}
		conv, err := ui.PromptConvention(dir.Path, dir.Analysis)
		if errors.Is(err, ui.ErrPromptCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		s.Settle(dir, conv)
	}
	return nil
}

func printReport(w io.Writer, r *scanner.Report, threshold float64) {
	table := ui.NewTable("Directory", "Files", "Detected", "Order", "Confidence", "Decision")
	for _, d := range r.Directories {
		detected := 0
		for _, f := range d.Files {
			if f.Timestamp != nil {
				detected++
			}
		}
		order := formatConvention(d.Convention)
		if d.NeedsReview {
			order = ui.Warning(order + "?")
		}
		table.AddRow(ui.Path(d.Path), ui.FormatCount(len(d.Files)), ui.FormatCount(detected), order,
			ui.Confidence(d.Analysis.Confidence, threshold), formatDecision(d.Decision))
	}
	table.Fprint(w)

	fmt.Fprintf(w, "\n%s, %s detected in %s\n",
		ui.Plural(r.Files, "file"), ui.FormatCount(r.Detected), ui.FormatDuration(r.Duration))
	if n := r.NeedsReview(); n > 0 {
		fmt.Fprintf(w, "%s %s need review; ambiguous dates there use the default order\n",
			ui.Warning("⚠"), ui.Plural(n, "folder"))
	}
}
