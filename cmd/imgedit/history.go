package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const historyListLimit = 20

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past editing runs",
		Long: `Without arguments, list the most recent runs. With a run ID, show
that run's per-image outcomes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.OpenHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()

			if len(args) == 1 {
				rows, err := store.ListAttempts(ctx, args[0])
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					return fmt.Errorf("no run found with ID %s", args[0])
				}

				for _, row := range rows {
					detail := row.Detail
					if detail == "" {
						detail = "-"
					}
					fmt.Fprintf(app.Out, "%2d. %-30s %-8s %s\n", row.ImageIndex+1, row.ImageName, row.Outcome, detail)
				}
				return nil
			}

			runs, err := store.ListRuns(ctx, historyListLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(app.Out, "No runs recorded yet.")
				return nil
			}

			for _, run := range runs {
				finished := "running"
				if !run.FinishedAt.IsZero() {
					finished = run.FinishedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(app.Out, "%s  %s  %-9s  %d image(s)  finished %s\n",
					run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Size, run.ImageCount, finished)
			}
			return nil
		},
	}

	return cmd
}
