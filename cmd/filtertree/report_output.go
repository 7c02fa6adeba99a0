package main

import (
	"fmt"
	"io"
	"strconv"

	"filtertree/internal/identity"
	"filtertree/internal/pipeline"
	"filtertree/internal/tree"
)

func nonNilRecords(records []identity.Record) []identity.Record {
	if records == nil {
		return []identity.Record{}
	}
	return records
}

func renderReport(w io.Writer, report pipeline.Report) {
	fmt.Fprintln(w, report.Summary())

	rows := make([][]string, 0, len(report.LevelCounts))
	for level, count := range report.LevelCounts {
		rows = append(rows, []string{strconv.Itoa(level), tree.LevelName(level), strconv.Itoa(count)})
	}
	if len(rows) > 0 {
		writeRows(w, []string{"Level", "Name", "Nodes"}, rows, []columnAlignment{alignRight, alignLeft, alignRight})
	}

	if len(report.Renamed) > 0 {
		renames := make([][]string, 0, len(report.Renamed))
		for _, r := range report.Renamed {
			renames = append(renames, []string{strconv.Itoa(r.Level), r.Old, r.New, string(r.Strategy)})
		}
		fmt.Fprintln(w)
		writeRows(w, []string{"Level", "Old", "New", "Strategy"}, renames, []columnAlignment{alignRight})
	}

	if len(report.Warnings) > 0 {
		warnings := make([][]string, 0, len(report.Warnings))
		for _, warn := range report.Warnings {
			line := ""
			if warn.Line > 0 {
				line = strconv.Itoa(warn.Line)
			}
			warnings = append(warnings, []string{warn.Stage, line, warn.Path, warn.Message})
		}
		fmt.Fprintln(w)
		writeRows(w, []string{"Stage", "Line", "Path", "Warning"}, warnings, []columnAlignment{alignLeft, alignRight})
	}
}
