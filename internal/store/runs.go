package store

import (
	"context"
	"fmt"
	"time"
)

// Run is the audit row written for each import.
type Run struct {
	ID         string    `json:"run_id"`
	Command    string    `json:"command"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Unchanged  int       `json:"unchanged"`
	Failed     int       `json:"failed"`
	Warnings   int       `json:"warnings"`
}

// RunFromStats fills the count fields of a Run from apply statistics.
func RunFromStats(id, command string, started, finished time.Time, stats ApplyStats, warnings int) Run {
	return Run{
		ID:         id,
		Command:    command,
		StartedAt:  started,
		FinishedAt: finished,
		Total:      stats.Total(),
		Created:    stats.Created,
		Updated:    stats.Updated,
		Unchanged:  stats.Unchanged,
		Failed:     stats.Failed,
		Warnings:   warnings,
	}
}

// RecordRun stores an audit row for run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("record run: missing run id")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (run_id, command, started_at, finished_at, total, created, updated, unchanged, failed, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, timestamp(run.StartedAt), timestamp(run.FinishedAt),
		run.Total, run.Created, run.Updated, run.Unchanged, run.Failed, run.Warnings,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Runs returns the most recent runs first. A non-positive limit returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT run_id, command, started_at, finished_at, total, created, updated, unchanged, failed, warnings
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                   Run
			startedRaw, finishRaw string
		)
		if err := rows.Scan(&run.ID, &run.Command, &startedRaw, &finishRaw,
			&run.Total, &run.Created, &run.Updated, &run.Unchanged, &run.Failed, &run.Warnings); err != nil {
			return nil, err
		}
		if t, err := parseTimeString(startedRaw); err == nil {
			run.StartedAt = t
		}
		if t, err := parseTimeString(finishRaw); err == nil {
			run.FinishedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
