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

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) error {
	personID := strings.TrimSpace(rec.PersonID)
	if personID == "" {
		return fmt.Errorf("RecordEvent: person_id is required")
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = rec.ReceivedAt
	}

	receivedMs := rec.ReceivedAt.UTC().UnixMilli()
	occurredMs := rec.OccurredAt.UTC().UnixMilli()
	name := strings.TrimSpace(rec.PersonName)

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := ensurePerson(ctx, tx, personID, name, occurredMs); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_events(
  event_id, person_id, person_name, action, location, occurred_at_ms, received_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?);
`,
			rec.EventID, personID, name, rec.Action, strings.TrimSpace(rec.Location),
			occurredMs, receivedMs,
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}

		return nil
	})
}

// ListSince reads straight from the pool; WAL lets it run alongside the
// writer.  Rows come back in insertion order.
func (s *AccessEventStore) ListSince(ctx context.Context, since time.Time) ([]store.AccessEventRecord, error) {
	query := `
SELECT event_id, person_id, person_name, action, location, occurred_at_ms, received_at_ms
FROM access_events`
	var args []any
	if !since.IsZero() {
		query += `
WHERE occurred_at_ms >= ?`
		args = append(args, since.UTC().UnixMilli())
	}
	query += `
ORDER BY id;`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListSince query: %w", err)
	}
	defer rows.Close()

	var out []store.AccessEventRecord
	for rows.Next() {
		var (
			rec                    store.AccessEventRecord
			occurredMs, receivedMs int64
		)
		if err := rows.Scan(
			&rec.EventID, &rec.PersonID, &rec.PersonName, &rec.Action, &rec.Location,
			&occurredMs, &receivedMs,
		); err != nil {
			return nil, fmt.Errorf("ListSince scan: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(occurredMs).UTC()
		rec.ReceivedAt = time.UnixMilli(receivedMs).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListSince rows: %w", err)
	}
	return out, nil
}

// PruneOlderThan deletes events that occurred before cutoff and returns the
// number of rows removed.  Uses idx_access_events_time for the range scan.
func (s *AccessEventStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM access_events
WHERE occurred_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
