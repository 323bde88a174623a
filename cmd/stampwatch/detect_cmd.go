package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/api"
	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

type detectResult struct {
	Filename  string               `json:"filename"`
	Timestamp *timestamp.Timestamp `json:"timestamp"`
}

func newDetectCmd() *cobra.Command {
	var (
		dateFormat string
		batch      bool
	)

	cmd := &cobra.Command{
		Use:   "detect <filename>...",
		Short: "Detect the timestamp in file names",
		Long: `Detect the date and time embedded in each file name.

Ambiguous dates such as 05-06-2024 are read with --date-format, or with the
configured default. With --batch the names are analyzed together first and
a confident batch recommendation replaces the default.

Examples:
  stampwatch detect IMG_20240315_143022.jpg
  stampwatch detect --date-format mdy 05-06-2024.jpg
  stampwatch detect --batch 05-06-2024.jpg 25-06-2024.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.Options{NoActivity: true})
			if err != nil {
				return err
			}
			defer a.Close()

			conv, err := parseDateFormat(dateFormat, a.Config.DateConvention())
			if err != nil {
				return err
			}
			if batch {
				analysis := timestamp.AnalyzeBatchFormat(args, timestamp.BatchOptions{})
				if analysis.Decide(a.Config.Detection.AutoResolveThreshold) == timestamp.AutoResolve {
					conv = analysis.Recommendation
				}
			}

			results := make([]detectResult, len(args))
			for i, name := range args {
				results[i] = detectResult{
					Filename:  name,
					Timestamp: a.Scanner.Detect(filepath.Base(name), conv),
				}
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), results)
			}

			table := ui.NewTable("File", "Timestamp", "Type", "Precision", "Confidence")
			for _, r := range results {
				if r.Timestamp == nil {
					table.AddRow(r.Filename, formatStamp(nil))
					continue
				}
				table.AddRow(r.Filename, formatStamp(r.Timestamp), r.Timestamp.Type,
					r.Timestamp.Precision().String(),
					ui.Confidence(r.Timestamp.Confidence, a.Config.Detection.AutoResolveThreshold))
			}
			table.Fprint(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dateFormat, "date-format", "d", "", "reading for ambiguous dates: dmy or mdy")
	cmd.Flags().BoolVar(&batch, "batch", false, "infer the date format from all names together")

	return cmd
}

func newCandidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <filename>",
		Short: "List every timestamp reading found in a file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cands := timestamp.DetectAllCandidates(filepath.Base(args[0]))
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), api.NewCandidateViews(cands))
			}
			if len(cands) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim("no timestamp found"))
				return nil
			}

			table := ui.NewTable("#", "Reading", "Type", "Alternative")
			for i, c := range cands {
				reading := c.Reading()
				alt := ""
				if amb, ok := c.(timestamp.Ambiguous); ok {
					alt = ui.Warning(amb.Alternatives[1].String())
				}
				table.AddRow(fmt.Sprint(i+1), formatStamp(&reading), reading.Type, alt)
			}
			table.Fprint(cmd.OutOrStdout())
			return nil
		},
	}
}

func newAmbiguityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ambiguity <filename>...",
		Short: "Report dates that have two valid readings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := make(map[string]*timestamp.AmbiguityRecord, len(args))
			for _, name := range args {
				records[name] = timestamp.DetectAmbiguity(filepath.Base(name))
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), records)
			}

			out := cmd.OutOrStdout()
			for _, name := range args {
				rec := records[name]
				if rec == nil {
					fmt.Fprintf(out, "%s %s\n", ui.Success("✓"), name)
					continue
				}
				fmt.Fprintf(out, "%s %s: %s %q\n", ui.Warning("⚠"), name, rec.Kind, rec.Match)
				for _, opt := range rec.Options {
					fmt.Fprintf(out, "    %-12s %s  %s\n", opt.Label, ui.Stamp(opt.Timestamp.String()), ui.Dim(opt.Description))
				}
			}
			return nil
		},
	}
}
