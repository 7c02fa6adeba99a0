package store

import (
	"database/sql"
	"errors"
	"time"

	"filtertree/internal/identity"
	"filtertree/internal/tree"
)

const nodeColumns = "identifier, name, level, parent_identifier, origin"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (identity.Record, error) {
	var (
		id     string
		name   string
		level  int
		parent sql.NullString
		origin sql.NullString
	)
	if err := scanner.Scan(&id, &name, &level, &parent, &origin); err != nil {
		return identity.Record{}, err
	}
	rec := identity.Record{
		ID:     id,
		Name:   name,
		Level:  level,
		Origin: tree.Origin(origin.String),
	}
	if parent.Valid {
		p := parent.String
		rec.ParentID = &p
	}
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]identity.Record, error) {
	defer rows.Close()
	var out []identity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableParent(parent *string) any {
	if parent == nil {
		return nil
	}
	return *parent
}

func sameParent(a *string, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameRecord(a, b identity.Record) bool {
	return a.Name == b.Name && a.Level == b.Level && a.Origin == b.Origin && sameParent(a.ParentID, b.ParentID)
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
