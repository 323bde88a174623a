package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/plans"
	"github.com/Nomadcxx/stampwatch/internal/renamer"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create, review and apply rename plans",
		Long: `Rename plans list the renames stampwatch would make. Plans are saved
under ~/.config/stampwatch/plans and applied in a separate step.

Examples:
  stampwatch plan create ~/Pictures      # Scan and save a plan
  stampwatch plan show                   # Review the latest plan
  stampwatch plan apply --dry-run        # Check it without renaming
  stampwatch plan apply                  # Rename the files
  stampwatch plan undo                   # Put the names back`,
	}

	cmd.AddCommand(newPlanCreateCmd())
	cmd.AddCommand(newPlanListCmd())
	cmd.AddCommand(newPlanShowCmd())
	cmd.AddCommand(newPlanApplyCmd())
	cmd.AddCommand(newPlanUndoCmd())
	cmd.AddCommand(newPlanDeleteCmd())

	return cmd
}

func newPlanCreateCmd() *cobra.Command {
	var (
		flags    scanFlags
		template string
	)

	cmd := &cobra.Command{
		Use:   "create <directory>",
		Short: "Scan a directory and save a rename plan",
		Args:  cobra.ExactArgs(1),
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

			if template == "" {
				template = a.Config.Rename.Template
			}
			plan, err := plans.Create(report, template)
			if err != nil {
				return err
			}
			if err := plans.Save(plan); err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), plan)
			}
			printPlan(cmd.OutOrStdout(), plan, false)
			fmt.Fprintf(cmd.OutOrStdout(), "\nSaved plan %s\nRun 'stampwatch plan apply %s' to rename.\n", plan.ID, plan.ID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&template, "template", "t", "", "rename template (default from config)")
	return cmd
}

func newPlanListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := plans.List()
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), all)
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim("no plans saved"))
				return nil
			}

			table := ui.NewTable("ID", "Created", "Root", "Renames", "Skipped")
			for _, p := range all {
				table.AddRow(p.ID, ui.FormatAge(p.CreatedAt), p.Root,
					ui.FormatCount(p.Summary.Renames), ui.FormatCount(p.Summary.Skipped))
			}
			table.Fprint(cmd.OutOrStdout())
			return nil
		},
	}
}

func newPlanShowCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a plan (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), plan)
			}
			printPlan(cmd.OutOrStdout(), plan, all)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include skipped files")
	return cmd
}

func newPlanApplyCmd() *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "apply [id]",
		Short: "Rename the files in a plan (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args)
			if err != nil {
				return err
			}
			if plan.Summary.Renames == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim("nothing to rename"))
				return nil
			}
			if !dryRun && !yes && !ui.Confirm(fmt.Sprintf("Rename %s?", ui.Plural(plan.Summary.Renames, "file"))) {
				return fmt.Errorf("aborted (use --yes to apply without asking)")
			}

			a, err := openApp(app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			r := newRenamer(a)
			report, err := r.Apply(cmd.Context(), plan, dryRun)
			if err != nil {
				return err
			}
			return printRenameReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "check the plan without renaming")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newPlanUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [id]",
		Short: "Reverse the renames made by a plan (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var planID string
			if len(args) == 1 {
				planID = args[0]
			} else {
				plan, err := loadPlan(nil)
				if err != nil {
					return err
				}
				planID = plan.ID
			}

			a, err := openApp(app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := newRenamer(a).Undo(cmd.Context(), planID)
			if errors.Is(err, renamer.ErrNothingToUndo) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim(err.Error()))
				return nil
			}
			if err != nil {
				return err
			}
			return printRenameReport(cmd.OutOrStdout(), report)
		},
	}
}

func newPlanDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := plans.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted plan %s\n", ui.Success("✓"), args[0])
			return nil
		},
	}
}

func newRenamer(a *app.App) *renamer.Renamer {
	return renamer.New(renamer.Options{
		KeepOriginal: a.Config.Rename.KeepOriginal,
		ExecutedBy:   database.ExecCLI,
		Logger:       a.Logger,
		Activity:     a.Activity,
	}, a.DB)
}

func loadPlan(args []string) (*plans.RenamePlan, error) {
	if len(args) == 1 {
		return plans.Load(args[0])
	}
	plan, err := plans.Latest()
	if errors.Is(err, plans.ErrNoPlan) {
		return nil, fmt.Errorf("%w (run 'stampwatch plan create <directory>' first)", err)
	}
	return plan, err
}

func printPlan(w io.Writer, plan *plans.RenamePlan, showSkipped bool) {
	fmt.Fprintf(w, "Plan %s  %s\n", plan.ID, ui.Dim(plan.Template))

	table := ui.NewTable("File", "New name", "Note")
	for _, op := range plan.Operations {
		switch {
		case !op.Skipped:
			table.AddRow(ui.Path(op.Source), ui.Stamp(filepath.Base(op.Target)))
		case showSkipped:
			table.AddRow(op.Source, ui.Dim("-"), ui.Warning(op.Reason))
		}
	}
	if table.Len() > 0 {
		table.Fprint(w)
	}

	fmt.Fprintf(w, "%s, %s to rename, %s skipped\n",
		ui.Plural(plan.Summary.Total, "file"),
		ui.FormatCount(plan.Summary.Renames),
		ui.FormatCount(plan.Summary.Skipped))
}

func printRenameReport(w io.Writer, report *renamer.Report) error {
	if jsonOut {
		return printJSON(w, report)
	}
	for _, res := range report.Results {
		switch {
		case res.Error != "":
			fmt.Fprintf(w, "%s %s: %s\n", ui.Error("✗"), res.Source, res.Error)
		case report.DryRun:
			fmt.Fprintf(w, "%s %s → %s\n", ui.Info("·"), res.Source, filepath.Base(res.Target))
		default:
			fmt.Fprintf(w, "%s %s → %s\n", ui.Success("✓"), res.Source, filepath.Base(res.Target))
		}
	}

	prefix := ""
	if report.DryRun {
		prefix = "[dry run] "
	}
	fmt.Fprintf(w, "\n%s%d done, %d skipped, %d failed\n", prefix, report.Applied, report.Skipped, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d renames failed", report.Failed, len(report.Results))
	}
	return nil
}
