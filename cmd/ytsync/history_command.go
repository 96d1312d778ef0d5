package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ytsync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(cfg.HistoryDBPath()); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No sync history recorded yet")
				return nil
			}

			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No sync history recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					humanize.Time(run.FinishedAt),
					run.PlaylistID,
					run.Location,
					run.Format,
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Fetched),
					strconv.Itoa(run.Failed),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Playlist", "Location", "Format", "Items", "New", "Failed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
