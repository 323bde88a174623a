package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

type analyzeResult struct {
	Analysis   timestamp.ContextAnalysis `json:"analysis"`
	Decision   timestamp.Decision        `json:"decision"`
	Convention timestamp.Convention      `json:"convention"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		threshold   float64
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <directory | filename...>",
		Short: "Infer whether a batch of names is day-first or month-first",
		Long: `Analyze a batch of file names together to decide whether ambiguous
dates such as 05-06-2024 are day-first (DMY) or month-first (MDY).

Names that can only be read one way (25-06-2024) are proof for that order.
When the confidence is below the threshold the result is "prompt-user";
with --interactive you are asked to choose.

Examples:
  stampwatch analyze ~/Pictures/holiday
  stampwatch analyze 05-06-2024.jpg 25-06-2024.jpg
  stampwatch analyze --interactive ~/Scans`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if threshold == 0 {
				threshold = cfg.Detection.AutoResolveThreshold
			}
			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("threshold %.2f outside [0,1]", threshold)
			}

			names, dir, err := batchInput(args)
			if err != nil {
				return err
			}

			result := analyze(names, dir, threshold, cfg)
			if interactive && result.Decision == timestamp.PromptUser && ui.IsInteractive() {
				title := dir
				if title == "" {
					title = ui.Plural(len(names), "file")
				}
				conv, err := ui.PromptConvention(title, result.Analysis)
				if err != nil && !errors.Is(err, ui.ErrPromptCancelled) {
					return err
				}
				if conv != "" {
					result.Convention = conv
				}
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printAnalysis(cmd.OutOrStdout(), result, threshold)
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "confidence needed to auto-resolve (default from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask when the batch cannot be resolved")

	return cmd
}

func analyze(names []string, dir string, threshold float64, cfg *config.Config) analyzeResult {
	analysis := timestamp.AnalyzeBatchFormat(names, timestamp.BatchOptions{CurrentDirectory: dir})
	result := analyzeResult{
		Analysis:   analysis,
		Decision:   analysis.Decide(threshold),
		Convention: cfg.DateConvention(),
	}
	if result.Decision == timestamp.AutoResolve {
		result.Convention = analysis.Recommendation
	}
	return result
}

func printAnalysis(w io.Writer, r analyzeResult, threshold float64) {
	a := r.Analysis
	fmt.Fprintf(w, "Recommendation: %s\n", formatConvention(a.Recommendation))
	fmt.Fprintf(w, "Confidence:     %s\n", ui.Confidence(a.Confidence, threshold))
	fmt.Fprintf(w, "Decision:       %s\n", formatDecision(r.Decision))
	fmt.Fprintf(w, "Convention:     %s\n", formatConvention(r.Convention))

	fmt.Fprintf(w, "\nFiles: %s  ambiguous: %d  day-first proof: %d  month-first proof: %d  year proof: %d\n",
		ui.FormatCount(a.Stats.Total), a.Stats.Ambiguous, a.Stats.DMYProof, a.Stats.MDYProof, a.Stats.YearProof)
	for _, e := range a.Evidence {
		fmt.Fprintln(w, ui.Dim("  • "+e))
	}
}
