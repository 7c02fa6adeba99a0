package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filtertree/internal/identity"
	"filtertree/internal/services"
	"filtertree/internal/store"
	"filtertree/internal/textutil"
)

type findMatch struct {
	identity.Record
	Score float64 `json:"score"`
}

func newFindCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var limit int
	var threshold float64

	cmd := &cobra.Command{
		Use:   "find <name>",
		Short: "Fuzzy-search stored nodes by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("name is required")
			}
			if threshold <= 0 {
				threshold = cfg.Match.FindThreshold
			}

			return ctx.withStore(true, func(st *store.Store) error {
				records, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				matches := rankMatches(query, records, threshold, limit)

				if asJSON {
					if matches == nil {
						matches = []findMatch{}
					}
					return writeJSON(cmd, matches)
				}
				if len(matches) == 0 {
					return services.Wrap(services.ErrNotFound, "find", "", fmt.Sprintf("no node resembles %q", query), nil)
				}
				rows := make([][]string, 0, len(matches))
				for _, m := range matches {
					rows = append(rows, []string{
						fmt.Sprintf("%.2f", m.Score),
						m.ID,
						m.Name,
						strconv.Itoa(m.Level),
					})
				}
				writeRows(cmd.OutOrStdout(), []string{"Score", "Identifier", "Name", "Level"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight})
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print matches as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum matches to show; 0 shows all")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override match.find_threshold")
	return cmd
}

// rankMatches scores every record against query and returns those at or
// above threshold, best first. Equal scores keep store order.
func rankMatches(query string, records []identity.Record, threshold float64, limit int) []findMatch {
	var matches []findMatch
	for _, rec := range records {
		score := textutil.Ratio(query, rec.Name)
		if score >= threshold {
			matches = append(matches, findMatch{Record: rec, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
