package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/patterns"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage custom timestamp patterns",
		Long: `Custom patterns are regular expressions with named groups (year,
month, day, hour, minute, second, ms) or a single group parsed with a Go
time layout. They are tried before built-in detection, highest priority
first.

Examples:
  stampwatch patterns add dashcam '(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})-(?P<hour>\d{2})(?P<minute>\d{2})'
  stampwatch patterns add --layout 20060102 scan 'scan(\d{8})'
  stampwatch patterns test cam_20240315-1422.mp4
  stampwatch patterns export patterns.yaml`,
	}

	cmd.AddCommand(newPatternsListCmd())
	cmd.AddCommand(newPatternsAddCmd())
	cmd.AddCommand(newPatternsRemoveCmd())
	cmd.AddCommand(newPatternsClearCmd())
	cmd.AddCommand(newPatternsTestCmd())
	cmd.AddCommand(newPatternsImportCmd())
	cmd.AddCommand(newPatternsExportCmd())

	return cmd
}

func openPatterns() (*app.App, error) {
	return openApp(app.Options{NoActivity: true})
}

func newPatternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openPatterns()
			if err != nil {
				return err
			}
			defer a.Close()

			list := a.Registry.List()
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim("no custom patterns"))
				return nil
			}

			table := ui.NewTable("Name", "Priority", "Expression", "Layout", "Description")
			for _, p := range list {
				table.AddRow(p.Name, fmt.Sprint(p.Priority), p.Expr, p.Layout, p.Description)
			}
			table.Fprint(cmd.OutOrStdout())
			return nil
		},
	}
}

func newPatternsAddCmd() *cobra.Command {
	var p patterns.Pattern

	cmd := &cobra.Command{
		Use:   "add <name> <expression>",
		Short: "Add or replace a custom pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openPatterns()
			if err != nil {
				return err
			}
			defer a.Close()

			p.Name, p.Expr = args[0], args[1]
			if err := a.Registry.Register(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added pattern %s\n", ui.Success("✓"), p.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&p.Layout, "layout", "l", "", "Go time layout for a single capture group")
	cmd.Flags().StringVarP(&p.Description, "description", "d", "", "description")
	cmd.Flags().IntVarP(&p.Priority, "priority", "p", 0, "higher priorities are tried first")
	return cmd
}

func newPatternsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a custom pattern",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openPatterns()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Registry.Unregister(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed pattern %s\n", ui.Success("✓"), args[0])
			return nil
		},
	}
}

func newPatternsClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every custom pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openPatterns()
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.Registry.Len()
			if n == 0 {
				return nil
			}
			if !yes && !ui.Confirm(fmt.Sprintf("Remove %s?", ui.Plural(n, "pattern"))) {
				return fmt.Errorf("aborted (use --yes to clear without asking)")
			}
			if err := a.Registry.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", ui.Success("✓"), ui.Plural(n, "pattern"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newPatternsTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <filename>...",
		Short: "Show which custom pattern matches each file name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openPatterns()
			if err != nil {
				return err
			}
			defer a.Close()

			table := ui.NewTable("File", "Pattern", "Timestamp")
			for _, name := range args {
				ts, ok := a.Registry.Match(filepath.Base(name))
				if !ok {
					table.AddRow(name, ui.Dim("-"), ui.Dim("-"))
					continue
				}
				table.AddRow(name, ts.Type, formatStamp(&ts))
			}
			table.Fprint(cmd.OutOrStdout())
			return nil
		},
	}
}

func newPatternsImportCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import patterns from a json, yaml or toml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := patterns.FormatFromPath(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			imported, err := patterns.Import(f, format)
			if err != nil {
				return err
			}

			a, err := openPatterns()
			if err != nil {
				return err
			}
			defer a.Close()

			if replace {
				if err := a.Registry.Clear(); err != nil {
					return err
				}
			}
			for _, p := range imported {
				if err := a.Registry.Register(p); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %s\n", ui.Success("✓"), ui.Plural(len(imported), "pattern"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "remove existing patterns first")
	return cmd
}

func newPatternsExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export patterns (to stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				f   patterns.Format
				err error
			)
			switch {
			case format != "":
				f, err = patterns.ParseFormat(format)
			case len(args) == 1:
				f, err = patterns.FormatFromPath(args[0])
			default:
				f = patterns.FormatYAML
			}
			if err != nil {
				return err
			}

			a, err := openPatterns()
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				return patterns.Export(cmd.OutOrStdout(), a.Registry.List(), f)
			}

			out, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := patterns.Export(out, a.Registry.List(), f); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %s to %s\n", ui.Success("✓"), ui.Plural(a.Registry.Len(), "pattern"), args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json, yaml or toml (default from the file extension, else yaml)")
	return cmd
}
