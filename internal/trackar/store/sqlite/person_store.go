package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/trackar/server/internal/db"
	"github.com/trackar/server/internal/trackar/store"
)

type PersonStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPersonStore(db *sql.DB, writer *dbpkg.Worker) *PersonStore {
	return &PersonStore{db: db, writer: writer}
}

// MarkSeen: ensure the person row exists and advance last_seen.
func (s *PersonStore) MarkSeen(ctx context.Context, personID, displayName string, t time.Time) error {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return nil
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	ms := t.UTC().UnixMilli()
	name := strings.TrimSpace(displayName)

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return ensurePerson(ctx, tx, personID, name, ms)
	})
}

func (s *PersonStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count people: %w", err)
	}
	return n, nil
}

// List returns people ordered by first appearance.
func (s *PersonStore) List(ctx context.Context) ([]store.PersonRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT person_id, display_name, first_seen_at_ms, last_seen_at_ms
FROM people
ORDER BY first_seen_at_ms, person_id;
`)
	if err != nil {
		return nil, fmt.Errorf("List people: %w", err)
	}
	defer rows.Close()

	var out []store.PersonRecord
	for rows.Next() {
		var (
			rec             store.PersonRecord
			firstMs, lastMs int64
		)
		if err := rows.Scan(&rec.PersonID, &rec.DisplayName, &firstMs, &lastMs); err != nil {
			return nil, fmt.Errorf("List people scan: %w", err)
		}
		rec.FirstSeen = time.UnixMilli(firstMs).UTC()
		rec.LastSeen = time.UnixMilli(lastMs).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List people rows: %w", err)
	}
	return out, nil
}
