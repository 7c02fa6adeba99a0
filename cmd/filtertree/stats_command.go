package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"filtertree/internal/store"
	"filtertree/internal/tree"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var runs int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored node counts per level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(true, func(st *store.Store) error {
				summary, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				var recent []store.Run
				if runs > 0 {
					recent, err = st.Runs(cmd.Context(), runs)
					if err != nil {
						return err
					}
				}

				if asJSON {
					if recent == nil {
						recent = []store.Run{}
					}
					return writeJSON(cmd, struct {
						store.Summary
						Runs []store.Run `json:"runs"`
					}{summary, recent})
				}

				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(summary.Levels))
				for _, lc := range summary.Levels {
					rows = append(rows, []string{strconv.Itoa(lc.Level), tree.LevelName(lc.Level), strconv.Itoa(lc.Count)})
				}
				writeRows(out, []string{"Level", "Name", "Nodes"}, rows, []columnAlignment{alignRight, alignLeft, alignRight})
				fmt.Fprintf(out, "Total: %d\n", summary.Total)
				if summary.Orphans > 0 {
					fmt.Fprintf(out, "Orphans: %d (run repair to re-parent them)\n", summary.Orphans)
				}

				if len(recent) > 0 {
					runRows := make([][]string, 0, len(recent))
					for _, run := range recent {
						runRows = append(runRows, []string{
							run.ID,
							run.StartedAt.Local().Format("2006-01-02 15:04:05"),
							run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
							strconv.Itoa(run.Created),
							strconv.Itoa(run.Updated),
							strconv.Itoa(run.Unchanged),
							strconv.Itoa(run.Failed),
						})
					}
					fmt.Fprintln(out)
					writeRows(out,
						[]string{"Run", "Started", "Took", "Created", "Updated", "Unchanged", "Failed"},
						runRows,
						[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
					)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	cmd.Flags().IntVar(&runs, "runs", 0, "Also list the most recent import runs")
	return cmd
}
