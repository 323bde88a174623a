package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/stampwatch/internal/app"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

func newReviewCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "List files waiting for review",
		Long: `List files the daemon or renamer could not handle on its own: names
without a timestamp, ambiguous dates in folders that need review and
renames blocked by an existing file.

Examples:
  stampwatch review
  stampwatch review --reason ambiguous_date
  stampwatch review resolve 12 "renamed by hand"
  stampwatch review ignore 13`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(app.Options{NoActivity: true})
			if err != nil {
				return err
			}
			defer a.Close()

			var items []database.SkippedItem
			if reason != "" {
				items, err = a.DB.GetSkippedItemsByReason(database.SkipReason(reason))
			} else {
				items, err = a.DB.GetPendingSkippedItems()
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim("nothing to review"))
				return nil
			}

			table := ui.NewTable("ID", "File", "Reason", "Details", "Attempts", "Updated")
			for _, it := range items {
				table.AddRow(strconv.FormatInt(it.ID, 10), it.Path, ui.Warning(string(it.SkipReason)),
					it.ErrorDetails, strconv.Itoa(it.Attempts), ui.FormatAge(it.UpdatedAt))
			}
			table.Fprint(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "only show items with this reason (no_timestamp, ambiguous_date, target_exists)")

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <id> [note]",
		Short: "Mark a review item as resolved",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			note := "resolved"
			if len(args) == 2 {
				note = args[1]
			}
			return updateReviewItem(cmd, args[0], func(db *database.Store, id int64) error {
				return db.ResolveSkippedItem(id, note)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "ignore <id>",
		Short: "Stop showing a review item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateReviewItem(cmd, args[0], func(db *database.Store, id int64) error {
				return db.IgnoreSkippedItem(id)
			})
		},
	})

	return cmd
}

func updateReviewItem(cmd *cobra.Command, arg string, update func(*database.Store, int64) error) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q", arg)
	}

	a, err := openApp(app.Options{NoActivity: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := update(a.DB, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Updated item %d\n", ui.Success("✓"), id)
	return nil
}
