package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
	noColor bool
	jsonOut bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stampwatch",
		Short: "Find and normalize dates in file names",
		Long: `stampwatch detects dates and times embedded in file names, works out
whether a folder writes dates day-first or month-first, and renames files
to a consistent timestamp layout.

Examples:
  stampwatch detect IMG_20240315_143022.jpg
  stampwatch analyze ~/Pictures/holiday
  stampwatch plan create ~/Pictures --interactive
  stampwatch plan apply`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				ui.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/stampwatch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")

	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newCandidatesCmd())
	rootCmd.AddCommand(newAmbiguityCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newPatternsCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}

// openApp loads the config and opens the shared components. Console
// logging goes to stderr and stays quiet unless --verbose is set.
func openApp(opts app.Options) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "warn"
		if verbose {
			opts.LogLevel = "debug"
		}
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	return app.Init(cfg, opts)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stampwatch %s\n", version)
		},
	}
}
