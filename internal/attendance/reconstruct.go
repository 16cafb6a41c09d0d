package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedInput is returned when any event lacks a parseable timestamp.
// The whole reconstruction is abandoned; no partial result is returned.
var ErrMalformedInput = errors.New("malformed input")

const (
	// DayLayout formats the calendar day used as part of the grouping key.
	DayLayout = "2006-01-02"

	// DateTimeLayout and TimeLayout are the display layouts for the
	// all-days and today views respectively.
	DateTimeLayout = "2006-01-02 15:04:05"
	TimeLayout     = "15:04:05"
)

// Accepted timestamp layouts, tried in order. Layouts without an offset are
// interpreted in the reconstructor's zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Reconstructor groups access events into attendance sessions using a single
// fixed time zone for both day derivation and reference-day filtering.
type Reconstructor struct {
	loc *time.Location
}

// New returns a Reconstructor for loc. A nil loc means UTC.
func New(loc *time.Location) *Reconstructor {
	if loc == nil {
		loc = time.UTC
	}
	return &Reconstructor{loc: loc}
}

// Location returns the zone sessions are derived in.
func (r *Reconstructor) Location() *time.Location { return r.loc }

// Midnight returns the start of day's calendar day in the reconstructor's zone.
func (r *Reconstructor) Midnight(day time.Time) time.Time {
	d := day.In(r.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.loc)
}

// ParseTimestamp parses a raw event timestamp into the reconstructor's zone.
func (r *Reconstructor) ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			return t.In(r.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

type stampedEvent struct {
	Event
	at time.Time
}

// stamp parses every timestamp up front so that a single bad event fails the
// call before any grouping happens.
func (r *Reconstructor) stamp(events []Event) ([]stampedEvent, error) {
	out := make([]stampedEvent, 0, len(events))
	for i, ev := range events {
		at, err := r.ParseTimestamp(ev.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d (person %q): %v", ErrMalformedInput, i, ev.PersonID, err)
		}
		out = append(out, stampedEvent{Event: ev, at: at})
	}
	return out, nil
}

// since keeps events at or after midnight of referenceDay. A zero
// referenceDay keeps everything.
func (r *Reconstructor) since(events []stampedEvent, referenceDay time.Time) []stampedEvent {
	if referenceDay.IsZero() {
		return events
	}
	midnight := r.Midnight(referenceDay)
	out := make([]stampedEvent, 0, len(events))
	for _, ev := range events {
		if ev.at.Before(midnight) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

type groupKey struct {
	personID string
	day      string
}

// Reconstruct builds one session per (person, calendar day) in events.
//
// Events are processed in input order. The first event of a group sets the
// session's name and location; every check_in (check_out) overwrites the
// previous one, so the last one seen in iteration order wins. Sessions are
// returned in the order their groups were first encountered.
//
// When referenceDay is non-zero, events before its midnight are discarded
// first. Any unparseable timestamp fails the call with ErrMalformedInput.
func (r *Reconstructor) Reconstruct(events []Event, referenceDay time.Time) ([]Session, error) {
	stamped, err := r.stamp(events)
	if err != nil {
		return nil, err
	}
	stamped = r.since(stamped, referenceDay)

	index := make(map[groupKey]int, len(stamped))
	sessions := make([]Session, 0, len(stamped))

	for _, ev := range stamped {
		key := groupKey{personID: ev.PersonID, day: ev.at.Format(DayLayout)}

		i, ok := index[key]
		if !ok {
			i = len(sessions)
			index[key] = i
			sessions = append(sessions, Session{
				PersonID:   ev.PersonID,
				PersonName: ev.PersonName,
				Day:        key.day,
				Location:   ev.Location,
			})
		}

		at := ev.at
		switch ev.Action {
		case ActionCheckIn:
			sessions[i].CheckIn = &at
		case ActionCheckOut:
			sessions[i].CheckOut = &at
		}
	}

	return sessions, nil
}

// FilterDay returns the events at or after midnight of referenceDay, in input
// order. It applies the same filter Reconstruct does, so aggregates computed
// from the result line up with the sessions.
func (r *Reconstructor) FilterDay(events []Event, referenceDay time.Time) ([]Event, error) {
	stamped, err := r.stamp(events)
	if err != nil {
		return nil, err
	}
	stamped = r.since(stamped, referenceDay)

	out := make([]Event, 0, len(stamped))
	for _, ev := range stamped {
		out = append(out, ev.Event)
	}
	return out, nil
}
