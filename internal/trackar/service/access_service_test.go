package service_test

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/trackar/service"
	"github.com/trackar/server/internal/trackar/store/memory"
	"github.com/trackar/server/internal/trackar/types"
)

var fixedNow = time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC)

// newTestAccessService builds an AccessService backed by in-memory stores,
// returning the service and both stores so tests can inspect what was written.
func newTestAccessService(loc *time.Location) (*service.AccessService, *memory.AccessEventStore, *memory.PersonStore) {
	people := memory.NewPersonStore()
	events := memory.NewAccessEventStore()
	svc := service.NewAccessService(service.NewPersonDirectory(people), events, attendance.New(loc))
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, events, people
}

// ── Event recording ──────────────────────────────────────────────────────────

func TestRecord_CheckIn_RecordsEvent(t *testing.T) {
	svc, es, _ := newTestAccessService(time.UTC)

	resp, err := svc.Record(context.Background(), types.AccessRequest{
		PersonID:   " emp-001 ",
		PersonName: "Amy",
		Action:     "check_in",
		Location:   "Lobby",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !resp.OK || resp.PersonID != "emp-001" || resp.Action != "check_in" {
		t.Errorf("unexpected response %+v", resp)
	}
	if _, err := uuid.Parse(resp.EventID); err != nil {
		t.Errorf("expected uuid event id, got %q", resp.EventID)
	}
	if resp.ServerTime != fixedNow.Format(time.RFC3339Nano) {
		t.Errorf("expected server_time=%s, got %s", fixedNow.Format(time.RFC3339Nano), resp.ServerTime)
	}

	events := es.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.EventID != resp.EventID {
		t.Errorf("stored event id %q != response %q", ev.EventID, resp.EventID)
	}
	if ev.Location != "Lobby" || ev.PersonName != "Amy" {
		t.Errorf("unexpected stored event %+v", ev)
	}
	if !ev.OccurredAt.Equal(fixedNow) {
		t.Errorf("expected occurred_at to default to server time, got %s", ev.OccurredAt)
	}
}

func TestRecord_ActionIsCaseInsensitive(t *testing.T) {
	svc, es, _ := newTestAccessService(time.UTC)

	if _, err := svc.Record(context.Background(), types.AccessRequest{
		PersonID: "emp-001",
		Action:   "CHECK_OUT",
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := es.Events()[0].Action; got != "check_out" {
		t.Errorf("expected normalised action check_out, got %q", got)
	}
}

func TestRecord_OccurredAtParsedInZone(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	svc, es, _ := newTestAccessService(lagos)

	if _, err := svc.Record(context.Background(), types.AccessRequest{
		PersonID:   "emp-001",
		Action:     "check_in",
		OccurredAt: "2026-02-15 09:00:00",
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC) // 09:00 WAT
	if got := es.Events()[0].OccurredAt; !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRecord_UpdatesPersonDirectory(t *testing.T) {
	svc, _, people := newTestAccessService(time.UTC)
	ctx := context.Background()

	for _, action := range []string{"check_in", "check_out"} {
		if _, err := svc.Record(ctx, types.AccessRequest{
			PersonID: "emp-001", PersonName: "Amy", Action: action,
		}); err != nil {
			t.Fatalf("Record %s: %v", action, err)
		}
	}

	n, err := people.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 person, got %d", n)
	}
}

// ── Validation ───────────────────────────────────────────────────────────────

func TestRecord_Validation_NoEventRecorded(t *testing.T) {
	cases := []struct {
		name string
		req  types.AccessRequest
		want error
	}{
		{"missing person", types.AccessRequest{Action: "check_in"}, service.ErrInvalidPersonID},
		{"blank person", types.AccessRequest{PersonID: "   ", Action: "check_in"}, service.ErrInvalidPersonID},
		{"unknown action", types.AccessRequest{PersonID: "emp-001", Action: "visit"}, service.ErrInvalidAction},
		{"missing action", types.AccessRequest{PersonID: "emp-001"}, service.ErrInvalidAction},
		{"bad timestamp", types.AccessRequest{PersonID: "emp-001", Action: "check_in", OccurredAt: "yesterday"}, service.ErrInvalidTimestamp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, es, _ := newTestAccessService(time.UTC)

			_, err := svc.Record(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if n := len(es.Events()); n != 0 {
				t.Errorf("expected no events, got %d", n)
			}
		})
	}
}
