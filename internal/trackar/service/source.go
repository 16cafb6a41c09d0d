package service

import (
	"context"
	"fmt"
	"time"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/trackar/store"
	"github.com/trackar/server/internal/trackar/types"
)

// Source yields the raw access-event stream the attendance views are built
// from.  since is a hint: implementations may return older events, and the
// reconstructor filters again.
type Source interface {
	Snapshot(ctx context.Context, since time.Time) (types.Snapshot, error)
	People(ctx context.Context) ([]types.Person, error)
}

// LocalSource reads the server's own event log and person directory.
type LocalSource struct {
	events    store.AccessEventStore
	directory *PersonDirectory
}

func NewLocalSource(es store.AccessEventStore, dir *PersonDirectory) *LocalSource {
	return &LocalSource{events: es, directory: dir}
}

func (s *LocalSource) Snapshot(ctx context.Context, since time.Time) (types.Snapshot, error) {
	recs, err := s.events.ListSince(ctx, since)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("list events: %w", err)
	}
	total, err := s.directory.Count(ctx)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("count people: %w", err)
	}

	events := make([]attendance.Event, 0, len(recs))
	for _, r := range recs {
		events = append(events, attendance.Event{
			PersonID:   r.PersonID,
			PersonName: r.PersonName,
			Action:     attendance.Action(r.Action),
			Timestamp:  r.OccurredAt.UTC().Format(time.RFC3339Nano),
			Location:   r.Location,
		})
	}
	return types.Snapshot{Events: events, TotalUsers: total}, nil
}

func (s *LocalSource) People(ctx context.Context) ([]types.Person, error) {
	recs, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	out := make([]types.Person, 0, len(recs))
	for _, r := range recs {
		out = append(out, types.Person{
			PersonID:    r.PersonID,
			DisplayName: r.DisplayName,
			FirstSeen:   r.FirstSeen.UTC().Format(time.RFC3339),
			LastSeen:    r.LastSeen.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
