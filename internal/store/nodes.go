package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filtertree/internal/identity"
	"filtertree/internal/logging"
	"filtertree/internal/services"
)

// List returns every stored node ordered by level, then insertion.
func (s *Store) List(ctx context.Context) ([]identity.Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+nodeColumns+" FROM nodes ORDER BY level, rowid")
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return scanRecords(rows)
}

// Get returns the node with the given identifier or services.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (identity.Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE identifier = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Record{}, services.Wrap(services.ErrNotFound, Stage, "get", id, nil)
	}
	if err != nil {
		return identity.Record{}, fmt.Errorf("get node %s: %w", id, err)
	}
	return rec, nil
}

// Children returns the direct children of parentID. An empty parentID lists
// the parentless nodes.
func (s *Store) Children(ctx context.Context, parentID string) ([]identity.Record, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+nodeColumns+" FROM nodes WHERE parent_identifier IS NULL ORDER BY rowid")
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+nodeColumns+" FROM nodes WHERE parent_identifier = ? ORDER BY rowid", parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return scanRecords(rows)
}

// Delete removes the given nodes and returns how many rows were removed.
// Children of a deleted node stay in the store with a NULL parent.
func (s *Store) Delete(ctx context.Context, ids []string) (int64, error) {
	ctx = ensureContext(ctx)
	size := s.batch.size
	if size <= 0 {
		size = len(ids)
	}
	var removed int64
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunk := ids[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		res, err := s.execWithRetry(ctx,
			"DELETE FROM nodes WHERE identifier IN ("+makePlaceholders(len(chunk))+")", args...)
		if err != nil {
			return removed, fmt.Errorf("delete nodes: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("delete nodes: %w", err)
		}
		removed += n
	}
	if removed > 0 {
		s.logger.Info("nodes deleted", logging.Int64("removed", removed))
	}
	return removed, nil
}

// Reparent brings the stored parent and level of each node in line with
// records and returns how many rows changed. Records that are not stored
// are ignored, as are records whose parent is missing from the store.
func (s *Store) Reparent(ctx context.Context, records []identity.Record) (int, error) {
	ctx = ensureContext(ctx)
	changed := 0
	err := s.retryOnBusy(ctx, func() error {
		changed = 0
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		now := timestamp(time.Now())
		for _, rec := range records {
			if rec.ParentID != nil {
				var exists int
				err := tx.QueryRowContext(ctx,
					"SELECT COUNT(1) FROM nodes WHERE identifier = ?", *rec.ParentID).Scan(&exists)
				if err != nil {
					return err
				}
				if exists == 0 {
					s.logger.Warn("reparent skipped, parent not stored",
						logging.String("identifier", rec.ID),
						logging.String("parent_identifier", *rec.ParentID),
						logging.String(logging.FieldEventType, "store_reparent_skipped"),
						logging.String(logging.FieldImpact, "node keeps its stored parent"),
					)
					continue
				}
			}
			res, err := tx.ExecContext(ctx,
				`UPDATE nodes SET parent_identifier = ?, level = ?, updated_at = ?
				 WHERE identifier = ? AND (parent_identifier IS NOT ? OR level != ?)`,
				nullableParent(rec.ParentID), rec.Level, now, rec.ID, nullableParent(rec.ParentID), rec.Level,
			)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			changed += int(n)
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, Stage, "reparent", "", err)
	}
	s.logger.Info("hierarchy repaired", logging.Int("changed", changed))
	return changed, nil
}

// LevelCount is the number of stored nodes at one level.
type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// Summary describes the stored tree.
type Summary struct {
	Levels []LevelCount `json:"levels"`
	Total  int          `json:"total"`
	// Orphans counts non-root-level nodes that have no stored parent.
	Orphans int `json:"orphans"`
}

// Stats returns per-level node counts.
func (s *Store) Stats(ctx context.Context) (Summary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT level, COUNT(*) FROM nodes GROUP BY level ORDER BY level")
	if err != nil {
		return Summary{}, fmt.Errorf("node stats: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var lc LevelCount
		if err := rows.Scan(&lc.Level, &lc.Count); err != nil {
			return Summary{}, err
		}
		summary.Levels = append(summary.Levels, lc)
		summary.Total += lc.Count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM nodes WHERE parent_identifier IS NULL AND level > 0",
	).Scan(&summary.Orphans)
	if err != nil {
		return Summary{}, fmt.Errorf("count orphans: %w", err)
	}
	return summary, nil
}
