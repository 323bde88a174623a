package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit    int
		activity bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent renames and undos",
		Long: `Show recent renames and undos from the operations log.

With --activity the detailed activity log is shown instead, including
every detection the daemon made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if activity {
				entries, err := a.Activity.GetRecentEntries(limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(out, entries)
				}
				table := ui.NewTable("When", "Action", "File", "Detected", "Result")
				for _, e := range entries {
					result := ui.Success("ok")
					switch {
					case !e.Success && e.Error != "":
						result = ui.Error(e.Error)
					case !e.Success:
						result = ui.Warning("no match")
					case e.DryRun:
						result = ui.Dim("dry run")
					}
					table.AddRow(ui.FormatAge(e.Timestamp), e.Action, e.Source, e.Detected, result)
				}
				table.Fprint(out)
				return nil
			}

			ops, err := a.DB.GetRecentOperations(limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(out, ops)
			}
			if len(ops) == 0 {
				fmt.Fprintln(out, ui.Dim("no operations recorded"))
				return nil
			}
			table := ui.NewTable("When", "Operation", "Plan", "From", "To", "By")
			for _, op := range ops {
				table.AddRow(ui.FormatAge(op.ExecutedAt), ui.Action(string(op.OperationType)), op.PlanID,
					op.SourcePath, op.TargetPath, string(op.ExecutedBy))
			}
			table.Fprint(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of entries")
	cmd.Flags().BoolVar(&activity, "activity", false, "show the activity log")
	cmd.AddCommand(newHistoryPruneCmd())
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete activity log files older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			a, err := openApp(app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.Activity.PruneOld(days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s\n", ui.Success("✓"), ui.Plural(removed, "activity file"))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "keep this many days of activity")
	return cmd
}
