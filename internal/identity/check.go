package identity

import (
	"fmt"
	"strings"

	"filtertree/internal/services"
)

// Problem is one defect found by CheckRecords.
type Problem struct {
	Index  int    `json:"index"`
	ID     string `json:"identifier"`
	Reason string `json:"reason"`
}

// CheckRecords validates an export list: identifiers are non-empty and
// unique, every parent reference points at an earlier record, and levels
// follow parents. Records must be in pre-order.
func CheckRecords(records []Record) []Problem {
	var problems []Problem
	add := func(i int, rec Record, format string, args ...any) {
		problems = append(problems, Problem{Index: i, ID: rec.ID, Reason: fmt.Sprintf(format, args...)})
	}

	levels := make(map[string]int, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			add(i, rec, "empty identifier")
		}
		if _, dup := levels[rec.ID]; dup {
			add(i, rec, "duplicate identifier")
		}
		switch {
		case rec.ParentID == nil:
			if rec.Level != 0 {
				add(i, rec, "root record at level %d", rec.Level)
			}
		default:
			parentLevel, ok := levels[*rec.ParentID]
			if !ok {
				add(i, rec, "parent %q not found before record", *rec.ParentID)
			} else if rec.Level != parentLevel+1 {
				add(i, rec, "level %d under parent level %d", rec.Level, parentLevel)
			}
		}
		if _, dup := levels[rec.ID]; !dup {
			levels[rec.ID] = rec.Level
		}
	}
	return problems
}

// CheckUnique returns an ErrInvariant error describing every problem in
// records, or nil.
func CheckUnique(records []Record) error {
	problems := CheckRecords(records)
	if len(problems) == 0 {
		return nil
	}
	parts := make([]string, 0, len(problems))
	for _, p := range problems {
		parts = append(parts, fmt.Sprintf("record %d (%s): %s", p.Index, p.ID, p.Reason))
	}
	return services.Wrap(services.ErrInvariant, Stage, "check export", strings.Join(parts, "; "), nil)
}
