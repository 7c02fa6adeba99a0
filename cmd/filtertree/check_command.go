package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"filtertree/internal/identity"
	"filtertree/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <export.json>",
		Short: "Validate an export file",
		Long: `Check verifies that identifiers are unique, parent identifiers resolve to
earlier records, and levels follow their parents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readExport(args[0])
			if err != nil {
				return err
			}
			problems := identity.CheckRecords(records)

			if asJSON {
				if problems == nil {
					problems = []identity.Problem{}
				}
				if err := writeJSON(cmd, problems); err != nil {
					return err
				}
			} else if len(problems) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d records OK\n", len(records))
			} else {
				rows := make([][]string, 0, len(problems))
				for _, p := range problems {
					rows = append(rows, []string{strconv.Itoa(p.Index), p.ID, p.Reason})
				}
				writeRows(cmd.OutOrStdout(), []string{"Index", "Identifier", "Problem"}, rows, []columnAlignment{alignRight})
			}

			if len(problems) > 0 {
				return services.Wrap(services.ErrInvariant, "check", "", fmt.Sprintf("%d problems in %s", len(problems), args[0]), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print problems as JSON")
	return cmd
}
