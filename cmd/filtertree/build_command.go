package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags inputFlags
	var outPath string
	var summary bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the filter tree and write the export JSON",
		Long: `Build reads the primary outline (--outline) and optionally the curated
hierarchy (--curated), reconstructs the tree, resolves name collisions,
assigns identifiers, and writes the export. Without --out the export goes
to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.runPipeline(cmd.Context(), flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if strings.TrimSpace(outPath) == "" {
				if err := writeJSON(cmd, nonNilRecords(result.Records)); err != nil {
					return err
				}
			} else {
				if err := writeExport(outPath, result.Records); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d records to %s\n", len(result.Records), outPath)
			}

			if summary {
				renderReport(cmd.ErrOrStderr(), result.Report)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.outline, "outline", "", "Primary outline (JSON, JSON lines, or hierarchy document)")
	cmd.Flags().StringVar(&flags.curated, "curated", "", "Curated hierarchy (JSON or YAML)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the export to this file instead of stdout")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print level counts, renames, and warnings to stderr")
	return cmd
}
