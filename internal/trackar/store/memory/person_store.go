package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/trackar/server/internal/trackar/store"
)

type PersonStore struct {
	mu     sync.RWMutex
	people map[string]store.PersonRecord
	order  []string
}

func NewPersonStore() *PersonStore {
	return &PersonStore{people: make(map[string]store.PersonRecord)}
}

func (s *PersonStore) MarkSeen(_ context.Context, personID, displayName string, t time.Time) error {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return nil
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.people[personID]
	if !ok {
		rec = store.PersonRecord{PersonID: personID, FirstSeen: t}
		s.order = append(s.order, personID)
	}
	if name := strings.TrimSpace(displayName); name != "" {
		rec.DisplayName = name
	}
	if t.Before(rec.FirstSeen) {
		rec.FirstSeen = t
	}
	if t.After(rec.LastSeen) {
		rec.LastSeen = t
	}
	s.people[personID] = rec
	return nil
}

func (s *PersonStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people), nil
}

// List returns people in the order they were first seen.
func (s *PersonStore) List(_ context.Context) ([]store.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.PersonRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.people[id])
	}
	return out, nil
}
