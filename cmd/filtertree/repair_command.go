package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filtertree/internal/identity"
	"filtertree/internal/pipeline"
	"filtertree/internal/store"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var flags inputFlags
	var exportPath string

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Re-parent stored nodes to match an export",
		Long: `Repair compares each stored node's parent and level with an export and
updates the rows that differ. The export is read from --export, or rebuilt
from --outline and --curated when --export is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				records []identity.Record
				err     error
			)
			switch {
			case strings.TrimSpace(exportPath) != "":
				records, err = readExport(exportPath)
			case strings.TrimSpace(flags.outline) != "":
				var result pipeline.Result
				result, err = ctx.runPipeline(cmd.Context(), flags)
				records = result.Records
			default:
				err = errors.New("pass --export or --outline")
			}
			if err != nil {
				return err
			}

			return ctx.withStore(false, func(st *store.Store) error {
				changed, err := st.Reparent(cmd.Context(), records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Re-parented %d nodes\n", changed)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "Export JSON produced by build")
	cmd.Flags().StringVar(&flags.outline, "outline", "", "Primary outline to rebuild from")
	cmd.Flags().StringVar(&flags.curated, "curated", "", "Curated hierarchy to rebuild from")
	return cmd
}
