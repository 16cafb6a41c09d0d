package store

import (
	"context"
	"time"
)

// AccessEventRecord is one check-in/check-out submission in the append-only
// event log.  Action is stored verbatim; unknown values are kept so the
// reconstructor can decide what to do with them.
type AccessEventRecord struct {
	EventID    string
	PersonID   string
	PersonName string
	Action     string
	Location   string
	OccurredAt time.Time // when the person scanned (device or client clock)
	ReceivedAt time.Time // when the server accepted the submission
}

// AccessEventStore persists access events as an append-only log.
type AccessEventStore interface {
	RecordEvent(ctx context.Context, rec AccessEventRecord) error

	// ListSince returns events with OccurredAt at or after since, in the
	// order they were recorded.  A zero since returns the whole log.
	ListSince(ctx context.Context, since time.Time) ([]AccessEventRecord, error)

	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
