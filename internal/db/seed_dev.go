package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// seedNamespace scopes the deterministic event IDs generated by SeedDev.
var seedNamespace = uuid.MustParse("7c1f5a52-3f55-4b8e-9a55-0d6f5e1a7b10")

type SeedDevOptions struct {
	// Day is the calendar day the demo events land on; zero means today.
	Day time.Time
	// Location is the zone Day's office hours are read in; nil means UTC.
	Location *time.Location
}

type seedPerson struct {
	id, name, location string
	in, out            string // "15:04", out may be empty
}

var seedPeople = []seedPerson{
	{id: "emp-001", name: "Amy Okafor", location: "Main Entrance", in: "08:52", out: "17:05"},
	{id: "emp-002", name: "Bo Lindqvist", location: "Side Gate", in: "09:14"},
	{id: "emp-003", name: "Chidi Eze", location: "Main Entrance", in: "10:03", out: "12:40"},
	{id: "emp-004", name: "Dana Reyes", location: "Parking Level 1", in: "11:27"},
}

// SeedDev inserts a handful of demo people and one day of check-in/check-out
// events.  Event IDs are derived from person, action and day, so running it
// again on the same day is a no-op.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	day := opt.Day
	if day.IsZero() {
		day = time.Now()
	}
	day = day.In(loc)
	dayKey := day.Format("2006-01-02")
	now := time.Now().UTC().UnixMilli()

	for _, p := range seedPeople {
		in, err := seedClock(day, p.in)
		if err != nil {
			return err
		}

		if _, err := db.ExecContext(ctx, `
INSERT INTO people(person_id, display_name, first_seen_at_ms, last_seen_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(person_id) DO UPDATE SET
  last_seen_at_ms = MAX(people.last_seen_at_ms, excluded.last_seen_at_ms);
`, p.id, p.name, in.UnixMilli(), in.UnixMilli()); err != nil {
			return fmt.Errorf("seed person %s: %w", p.id, err)
		}

		if err := seedEvent(ctx, db, p, "check_in", dayKey, in, now); err != nil {
			return err
		}
		if p.out == "" {
			continue
		}
		out, err := seedClock(day, p.out)
		if err != nil {
			return err
		}
		if err := seedEvent(ctx, db, p, "check_out", dayKey, out, now); err != nil {
			return err
		}
	}

	return nil
}

func seedEvent(ctx context.Context, db *sql.DB, p seedPerson, action, dayKey string, at time.Time, now int64) error {
	id := uuid.NewSHA1(seedNamespace, []byte(p.id+"/"+action+"/"+dayKey)).String()

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO access_events(
  event_id, person_id, person_name, action, location, occurred_at_ms, received_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?);
`, id, p.id, p.name, action, p.location, at.UTC().UnixMilli(), now); err != nil {
		return fmt.Errorf("seed %s %s: %w", action, p.id, err)
	}
	return nil
}

func seedClock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("seed clock %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
