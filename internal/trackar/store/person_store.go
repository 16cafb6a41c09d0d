package store

import (
	"context"
	"time"
)

type PersonRecord struct {
	PersonID    string
	DisplayName string
	FirstSeen   time.Time
	LastSeen    time.Time
}

// PersonStore is the directory of people who have ever produced an access
// event.
type PersonStore interface {
	MarkSeen(ctx context.Context, personID, displayName string, t time.Time) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]PersonRecord, error)
}
