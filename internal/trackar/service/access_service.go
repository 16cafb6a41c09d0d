package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/trackar/store"
	"github.com/trackar/server/internal/trackar/types"
)

var (
	ErrInvalidPersonID  = errors.New("person_id is required")
	ErrInvalidAction    = errors.New("action must be check_in or check_out")
	ErrInvalidTimestamp = errors.New("occurred_at is not a valid timestamp")
)

// AccessService records check-in/check-out submissions into the event log.
type AccessService struct {
	directory  *PersonDirectory
	eventStore store.AccessEventStore
	rec        *attendance.Reconstructor

	now   func() time.Time
	newID func() string
}

func NewAccessService(dir *PersonDirectory, es store.AccessEventStore, rec *attendance.Reconstructor) *AccessService {
	if rec == nil {
		rec = attendance.New(time.UTC)
	}
	return &AccessService{
		directory:  dir,
		eventStore: es,
		rec:        rec,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// SetClock replaces the server clock.  Tests only.
func (s *AccessService) SetClock(now func() time.Time) { s.now = now }

// Record validates req and appends it to the event log.  The event insert
// must succeed; updating the person directory is best-effort.
func (s *AccessService) Record(ctx context.Context, req types.AccessRequest) (types.AccessResponse, error) {
	now := s.now().UTC()

	personID := strings.TrimSpace(req.PersonID)
	action := attendance.Action(strings.ToLower(strings.TrimSpace(req.Action)))

	if personID == "" {
		return types.AccessResponse{}, ErrInvalidPersonID
	}
	if !action.Known() {
		return types.AccessResponse{}, ErrInvalidAction
	}

	occurredAt := now
	if raw := strings.TrimSpace(req.OccurredAt); raw != "" {
		t, err := s.rec.ParseTimestamp(raw)
		if err != nil {
			return types.AccessResponse{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		occurredAt = t.UTC()
	}

	rec := store.AccessEventRecord{
		EventID:    s.newID(),
		PersonID:   personID,
		PersonName: strings.TrimSpace(req.PersonName),
		Action:     string(action),
		Location:   strings.TrimSpace(req.Location),
		OccurredAt: occurredAt,
		ReceivedAt: now,
	}
	if err := s.eventStore.RecordEvent(ctx, rec); err != nil {
		return types.AccessResponse{}, fmt.Errorf("record event: %w", err)
	}

	_ = s.directory.NoteSeen(ctx, personID, rec.PersonName, occurredAt)

	return types.AccessResponse{
		OK:         true,
		EventID:    rec.EventID,
		PersonID:   personID,
		Action:     rec.Action,
		OccurredAt: occurredAt.Format(time.RFC3339Nano),
		ServerTime: now.Format(time.RFC3339Nano),
	}, nil
}
