package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// ensurePerson guarantees a people row exists for personID so that the
// foreign key from access_events is satisfied, and refreshes its display
// name and last-seen time.  A blank name never overwrites a known one.
//
// Must be called inside an existing transaction.
func ensurePerson(ctx context.Context, tx *sql.Tx, personID, displayName string, nowMs int64) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO people(person_id, display_name, first_seen_at_ms, last_seen_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(person_id) DO UPDATE SET
  display_name     = CASE WHEN excluded.display_name <> '' THEN excluded.display_name ELSE people.display_name END,
  first_seen_at_ms = MIN(people.first_seen_at_ms, excluded.first_seen_at_ms),
  last_seen_at_ms  = MAX(people.last_seen_at_ms, excluded.last_seen_at_ms);
`, personID, displayName, nowMs, nowMs); err != nil {
		return fmt.Errorf("ensurePerson %s: %w", personID, err)
	}
	return nil
}
