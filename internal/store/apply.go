package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"filtertree/internal/identity"
	"filtertree/internal/logging"
	"filtertree/internal/services"
)

// ApplyOptions tune a single Apply call.
type ApplyOptions struct {
	// BatchSize overrides the configured batch size when positive.
	BatchSize int
	// OnBatch is called after each committed batch.
	OnBatch func(BatchProgress)
}

// BatchProgress describes a committed batch.
type BatchProgress struct {
	Batch   int
	Batches int
	Done    int
	Total   int
}

// ApplyStats counts upsert outcomes.
type ApplyStats struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Batches   int `json:"batches"`
}

// Total returns the number of records Apply saw.
func (s ApplyStats) Total() int {
	return s.Created + s.Updated + s.Unchanged + s.Failed
}

// SuccessRate returns the share of records that did not fail, as a
// percentage. It returns 0 when nothing was applied.
func (s ApplyStats) SuccessRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(total-s.Failed) / float64(total) * 100
}

func (s *ApplyStats) add(other ApplyStats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Unchanged += other.Unchanged
	s.Failed += other.Failed
}

// Apply upserts records keyed by identifier. Records must arrive parents
// first, as identity.Assign produces them. A record the database rejects
// (for example a parent that could not be stored) is counted as failed and
// the batch continues; busy errors retry the whole batch.
func (s *Store) Apply(ctx context.Context, records []identity.Record, opts ApplyOptions) (ApplyStats, error) {
	ctx = ensureContext(ctx)
	var stats ApplyStats
	if len(records) == 0 {
		return stats, nil
	}

	size := s.batch.size
	if opts.BatchSize > 0 {
		size = opts.BatchSize
	}
	if size <= 0 {
		size = len(records)
	}
	batches := (len(records) + size - 1) / size
	logger := logging.WithContext(ctx, s.logger)

	for batch := 0; batch < batches; batch++ {
		if batch > 0 && s.batch.delay > 0 {
			select {
			case <-time.After(s.batch.delay):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}
		start := batch * size
		end := min(start+size, len(records))

		var batchStats ApplyStats
		err := s.retryOnBusy(ctx, func() error {
			var txErr error
			batchStats, txErr = s.applyBatch(ctx, logger, records[start:end])
			return txErr
		})
		if err != nil {
			return stats, services.Wrap(services.ErrTransient, Stage, "apply",
				fmt.Sprintf("batch %d of %d", batch+1, batches), err)
		}
		stats.add(batchStats)
		stats.Batches++

		logger.Debug("batch applied",
			logging.Int("batch", batch+1),
			logging.Int("batches", batches),
			logging.Int("created", batchStats.Created),
			logging.Int("updated", batchStats.Updated),
			logging.Int("failed", batchStats.Failed),
		)
		if opts.OnBatch != nil {
			opts.OnBatch(BatchProgress{Batch: batch + 1, Batches: batches, Done: end, Total: len(records)})
		}
	}

	logger.Info("store apply complete",
		logging.Int("created", stats.Created),
		logging.Int("updated", stats.Updated),
		logging.Int("unchanged", stats.Unchanged),
		logging.Int("failed", stats.Failed),
		logging.String("success_rate", fmt.Sprintf("%.1f%%", stats.SuccessRate())),
	)
	return stats, nil
}

func (s *Store) applyBatch(ctx context.Context, logger *slog.Logger, records []identity.Record) (ApplyStats, error) {
	var stats ApplyStats
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer func() { _ = tx.Rollback() }()

	now := timestamp(time.Now())
	for _, rec := range records {
		outcome, err := upsertRecord(ctx, tx, rec, now)
		if err != nil {
			if isSQLiteBusy(err) || ctx.Err() != nil {
				return ApplyStats{}, err
			}
			stats.Failed++
			logger.Warn("node upsert failed",
				logging.String("identifier", rec.ID),
				logging.Error(err),
				logging.String(logging.FieldEventType, "store_upsert_failed"),
				logging.String(logging.FieldErrorHint, "check that the parent identifier exists in the store"),
			)
			continue
		}
		switch outcome {
		case outcomeCreated:
			stats.Created++
		case outcomeUpdated:
			stats.Updated++
		default:
			stats.Unchanged++
		}
	}

	if err := tx.Commit(); err != nil {
		return ApplyStats{}, err
	}
	return stats, nil
}

type upsertOutcome int

const (
	outcomeUnchanged upsertOutcome = iota
	outcomeCreated
	outcomeUpdated
)

func upsertRecord(ctx context.Context, tx *sql.Tx, rec identity.Record, now string) (upsertOutcome, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE identifier = ?", rec.ID)
	existing, err := scanRecord(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO nodes (identifier, name, level, parent_identifier, origin, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.Level, nullableParent(rec.ParentID), string(rec.Origin), now, now,
		)
		if err != nil {
			return outcomeUnchanged, err
		}
		return outcomeCreated, nil
	case err != nil:
		return outcomeUnchanged, err
	}

	if sameRecord(existing, rec) {
		return outcomeUnchanged, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE nodes SET name = ?, level = ?, parent_identifier = ?, origin = ?, updated_at = ?
		 WHERE identifier = ?`,
		rec.Name, rec.Level, nullableParent(rec.ParentID), string(rec.Origin), now, rec.ID,
	)
	if err != nil {
		return outcomeUnchanged, err
	}
	return outcomeUpdated, nil
}
