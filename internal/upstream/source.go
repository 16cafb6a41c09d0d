package upstream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/trackar/types"
)

const renewSkew = 30 * time.Second

// Source adapts the REST API to the attendance views.  It logs in lazily,
// renews the session when the token expires, and retries once with a fresh
// login when a request is rejected as unauthorized.
type Source struct {
	client *Client
	phone  string
	pin    string

	mu      sync.Mutex
	session *Session
	now     func() time.Time
}

func NewSource(c *Client, phone, pin string) *Source {
	return &Source{client: c, phone: phone, pin: pin, now: time.Now}
}

// Snapshot returns the dashboard's recent logs as events.  The API does not
// filter by time, so since is ignored.
func (s *Source) Snapshot(ctx context.Context, _ time.Time) (types.Snapshot, error) {
	var a Analytics
	err := s.withSession(ctx, func(sess *Session) error {
		var err error
		a, err = s.client.Analytics(ctx, sess)
		return err
	})
	if err != nil {
		return types.Snapshot{}, err
	}

	events := make([]attendance.Event, 0, len(a.RecentLogs))
	for _, l := range a.RecentLogs {
		events = append(events, attendance.Event{
			PersonID:   l.PersonID(),
			PersonName: l.Name,
			Action:     attendance.Action(l.Action),
			Timestamp:  l.Timestamp,
			Location:   l.Location,
		})
	}
	return types.Snapshot{Events: events, TotalUsers: a.TotalUsers}, nil
}

func (s *Source) People(ctx context.Context) ([]types.Person, error) {
	var users []User
	err := s.withSession(ctx, func(sess *Session) error {
		var err error
		users, err = s.client.Users(ctx, sess)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]types.Person, 0, len(users))
	for _, u := range users {
		id := string(u.ID)
		if id == "" {
			id = string(u.Phone)
		}
		out = append(out, types.Person{PersonID: id, DisplayName: u.Name, Role: u.Role})
	}
	return out, nil
}

func (s *Source) withSession(ctx context.Context, fn func(*Session) error) error {
	sess, err := s.current(ctx)
	if err != nil {
		return err
	}
	err = fn(sess)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	s.invalidate(sess)
	if sess, err = s.current(ctx); err != nil {
		return err
	}
	return fn(sess)
}

func (s *Source) current(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Expired(s.now(), renewSkew) {
		return s.session, nil
	}
	if s.phone == "" {
		return nil, ErrNoSession
	}
	sess, err := s.client.Login(ctx, s.phone, s.pin)
	if err != nil {
		return nil, err
	}
	s.session = sess
	return sess, nil
}

// invalidate drops sess unless another caller already replaced it.
func (s *Source) invalidate(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == sess {
		s.session = nil
	}
}
