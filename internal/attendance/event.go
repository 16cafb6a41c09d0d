// Package attendance reconstructs per-person daily attendance sessions from a
// flat stream of check-in/check-out access events.
//
// Everything in this package is pure: no I/O, no shared mutable state. The
// only configuration is the time zone used to derive calendar days, which is
// fixed when the Reconstructor is built so that day keys and the
// reference-day filter can never disagree.
package attendance

import "time"

// Action is the tag an access event carries. Values other than the two
// known ones are tolerated and ignored when resolving check-in/check-out.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// Known reports whether a is one of the recognised actions.
func (a Action) Known() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// Event is a single recorded scan or submission. Timestamp is kept raw;
// it is parsed (and validated) by the Reconstructor.
type Event struct {
	PersonID   string `json:"person_id"`
	PersonName string `json:"person_name"`
	Action     Action `json:"action"`
	Timestamp  string `json:"timestamp"`
	Location   string `json:"location"`
}

// Status classifies a session for display.
type Status string

const (
	// StatusActive: checked in, not yet checked out.
	StatusActive   Status = "active"
	StatusDeparted Status = "departed"
	// StatusPending: the group only carried unrecognised actions.
	StatusPending Status = "pending"
)

// Label is the human label the dashboard shows for a status.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "In Office"
	case StatusDeparted:
		return "Departed"
	default:
		return "Checked In"
	}
}

// Session is the derived summary for one (person, calendar day) pair.
// PersonName and Location come from the first event seen for the group.
type Session struct {
	PersonID   string
	PersonName string
	Day        string // DayLayout, in the reconstructor's zone
	Location   string
	CheckIn    *time.Time
	CheckOut   *time.Time
}

// Status derives the display status from which timestamps are set.
func (s Session) Status() Status {
	switch {
	case s.CheckOut != nil:
		return StatusDeparted
	case s.CheckIn != nil:
		return StatusActive
	default:
		return StatusPending
	}
}

// FormatTime renders an optional session timestamp with layout, returning
// "" when unset.
func FormatTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
