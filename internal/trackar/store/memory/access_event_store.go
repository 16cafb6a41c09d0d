package memory

import (
	"context"
	"sync"
	"time"

	"github.com/trackar/server/internal/trackar/store"
)

// AccessEventStore is an in-memory append-only log of access events.
// It is intended for use in tests and dev environments.
type AccessEventStore struct {
	mu     sync.Mutex
	events []store.AccessEventRecord
}

func NewAccessEventStore() *AccessEventStore {
	return &AccessEventStore{}
}

func (s *AccessEventStore) RecordEvent(_ context.Context, rec store.AccessEventRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = rec.ReceivedAt
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, rec)
	return nil
}

func (s *AccessEventStore) ListSince(_ context.Context, since time.Time) ([]store.AccessEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessEventRecord, 0, len(s.events))
	for _, ev := range s.events {
		if !since.IsZero() && ev.OccurredAt.Before(since) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *AccessEventStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	var deleted int64
	for _, ev := range s.events {
		if ev.OccurredAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
	return deleted, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *AccessEventStore) Events() []store.AccessEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
