package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"filtertree/internal/identity"
	"filtertree/internal/logging"
	"filtertree/internal/services"
	"filtertree/internal/store"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var flags inputFlags
	var batchSize int
	var prune bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build the filter tree and upsert it into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			runID := uuid.NewString()
			runCtx := services.WithStage(services.WithRunID(cmd.Context(), runID), store.Stage)

			result, err := ctx.runPipeline(runCtx, flags)
			if err != nil {
				return err
			}

			logger := logging.WithContext(runCtx, ctx.loggerValue())
			return ctx.withStore(false, func(st *store.Store) error {
				stats, err := st.Apply(runCtx, result.Records, store.ApplyOptions{
					BatchSize: batchSize,
					OnBatch: func(p store.BatchProgress) {
						logger.Info("import progress",
							logging.Int("batch", p.Batch),
							logging.Int("batches", p.Batches),
							logging.Int("done", p.Done),
							logging.Int("total", p.Total),
						)
					},
				})
				if err != nil {
					return err
				}

				var pruned int64
				if prune {
					pruned, err = pruneStale(runCtx, st, result.Records)
					if err != nil {
						return err
					}
				}

				run := store.RunFromStats(runID, "import", started, time.Now(), stats, len(result.Report.Warnings))
				if err := st.RecordRun(runCtx, run); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s\n", runID)
				fmt.Fprintf(out, "Created: %d\nUpdated: %d\nUnchanged: %d\nFailed: %d\n",
					stats.Created, stats.Updated, stats.Unchanged, stats.Failed)
				if prune {
					fmt.Fprintf(out, "Pruned: %d\n", pruned)
				}
				fmt.Fprintf(out, "Success rate: %.1f%%\n", stats.SuccessRate())
				if stats.Failed > 0 {
					return fmt.Errorf("%d of %d records failed to import", stats.Failed, stats.Total())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.outline, "outline", "", "Primary outline (JSON, JSON lines, or hierarchy document)")
	cmd.Flags().StringVar(&flags.curated, "curated", "", "Curated hierarchy (JSON or YAML)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Override store.batch_size for this run")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete stored nodes that are not in the new export")
	return cmd
}

// pruneStale deletes stored nodes whose identifiers are absent from records.
func pruneStale(ctx context.Context, st *store.Store, records []identity.Record) (int64, error) {
	stored, err := st.List(ctx)
	if err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(records))
	for _, rec := range records {
		keep[rec.ID] = struct{}{}
	}
	var stale []string
	for _, rec := range stored {
		if _, ok := keep[rec.ID]; !ok {
			stale = append(stale, rec.ID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return st.Delete(ctx, stale)
}
