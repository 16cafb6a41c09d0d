package attendance

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWindow = errors.New("invalid hour window")

// Summary counts sessions by status. CheckedInOnly is the same population as
// Active; it is kept as its own field because the dashboard labels it
// separately.
type Summary struct {
	Total         int
	Active        int
	Departed      int
	CheckedInOnly int
}

// Summarize classifies sessions.
func Summarize(sessions []Session) Summary {
	s := Summary{Total: len(sessions)}
	for _, sess := range sessions {
		switch sess.Status() {
		case StatusActive:
			s.Active++
		case StatusDeparted:
			s.Departed++
		}
	}
	s.CheckedInOnly = s.Active
	return s
}

// HourWindow is an inclusive range of hours of the day shown in the
// histogram.
type HourWindow struct {
	First int
	Last  int
}

// DefaultHourWindow covers 08:00 through 19:59.
var DefaultHourWindow = HourWindow{First: 8, Last: 19}

func (w HourWindow) Validate() error {
	if w.First < 0 || w.Last > 23 || w.First > w.Last {
		return fmt.Errorf("%w: %d-%d", ErrInvalidWindow, w.First, w.Last)
	}
	return nil
}

// HourBucket holds the per-action event counts for one hour of the day.
type HourBucket struct {
	Hour      int
	CheckIns  int
	CheckOuts int
}

// Label renders the bucket's hour as "H:00".
func (b HourBucket) Label() string {
	return fmt.Sprintf("%d:00", b.Hour)
}

// Histogram buckets raw events by hour of day in the reconstructor's zone.
// One bucket is returned per hour in w, including empty ones. Events outside
// the window and events with unknown actions are not counted.
func (r *Reconstructor) Histogram(events []Event, w HourWindow) ([]HourBucket, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	stamped, err := r.stamp(events)
	if err != nil {
		return nil, err
	}

	buckets := make([]HourBucket, w.Last-w.First+1)
	for i := range buckets {
		buckets[i].Hour = w.First + i
	}

	for _, ev := range stamped {
		h := ev.at.Hour()
		if h < w.First || h > w.Last {
			continue
		}
		b := &buckets[h-w.First]
		switch ev.Action {
		case ActionCheckIn:
			b.CheckIns++
		case ActionCheckOut:
			b.CheckOuts++
		}
	}

	return buckets, nil
}

// ActionCounts totals check-in and check-out events.
type ActionCounts struct {
	CheckIns  int
	CheckOuts int
}

// CountActions counts check-ins and check-outs at or after midnight of
// referenceDay (all events when it is zero).
func (r *Reconstructor) CountActions(events []Event, referenceDay time.Time) (ActionCounts, error) {
	stamped, err := r.stamp(events)
	if err != nil {
		return ActionCounts{}, err
	}

	var c ActionCounts
	for _, ev := range r.since(stamped, referenceDay) {
		switch ev.Action {
		case ActionCheckIn:
			c.CheckIns++
		case ActionCheckOut:
			c.CheckOuts++
		}
	}
	return c, nil
}
