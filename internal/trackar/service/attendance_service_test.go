package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/trackar/service"
	"github.com/trackar/server/internal/trackar/store"
	"github.com/trackar/server/internal/trackar/store/memory"
	"github.com/trackar/server/internal/trackar/types"
)

// stubSource serves a fixed snapshot, or fails with err.
type stubSource struct {
	snap   types.Snapshot
	people []types.Person
	err    error
}

func (s *stubSource) Snapshot(context.Context, time.Time) (types.Snapshot, error) {
	return s.snap, s.err
}

func (s *stubSource) People(context.Context) ([]types.Person, error) {
	return s.people, s.err
}

func event(id, name string, action attendance.Action, ts, loc string) attendance.Event {
	return attendance.Event{PersonID: id, PersonName: name, Action: action, Timestamp: ts, Location: loc}
}

// Amy completes a session on the 14th and checks in again on the 15th; Bo
// only checks in on the 15th.
var amyBo = []attendance.Event{
	event("p1", "Amy", attendance.ActionCheckIn, "2026-02-14T09:00:00Z", "Lobby"),
	event("p1", "Amy", attendance.ActionCheckOut, "2026-02-14T17:00:00Z", "Lobby"),
	event("p1", "Amy", attendance.ActionCheckIn, "2026-02-15T08:45:00Z", "Lobby"),
	event("p2", "", attendance.ActionCheckIn, "2026-02-15T09:10:00Z", ""),
}

func newTestAttendanceService(src service.Source) *service.AttendanceService {
	svc := service.NewAttendanceService(src, attendance.New(time.UTC), attendance.DefaultHourWindow)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

// ═══════════════════════════════════════════════════════════════════════════
// Sessions
// ═══════════════════════════════════════════════════════════════════════════

func TestSessions_AllDays(t *testing.T) {
	svc := newTestAttendanceService(&stubSource{snap: types.Snapshot{Events: amyBo, TotalUsers: 2}})

	resp, err := svc.Sessions(context.Background(), "")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if resp.Day != "" {
		t.Errorf("expected no day for the all-days view, got %q", resp.Day)
	}
	if len(resp.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(resp.Sessions))
	}

	first := resp.Sessions[0]
	if first.CheckIn != "2026-02-14 09:00:00" || first.CheckOut != "2026-02-14 17:00:00" {
		t.Errorf("unexpected first session %+v", first)
	}
	if first.StatusLabel != "Departed" {
		t.Errorf("expected Departed, got %q", first.StatusLabel)
	}

	bo := resp.Sessions[2]
	if bo.PersonName != types.UnknownPersonName || bo.Location != types.UnknownLocation {
		t.Errorf("expected placeholders for Bo, got %+v", bo)
	}
	if bo.CheckOut != "" || bo.StatusLabel != "In Office" {
		t.Errorf("expected open session for Bo, got %+v", bo)
	}

	want := types.SummaryView{Total: 3, Active: 2, Departed: 1, CheckedInOnly: 2}
	if resp.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, resp.Summary)
	}
}

func TestSessions_Today(t *testing.T) {
	svc := newTestAttendanceService(&stubSource{snap: types.Snapshot{Events: amyBo}})

	resp, err := svc.Sessions(context.Background(), "today")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if resp.Day != "2026-02-15" {
		t.Errorf("expected day 2026-02-15, got %q", resp.Day)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("expected 2 sessions today, got %d", len(resp.Sessions))
	}
	if resp.Sessions[0].CheckIn != "08:45:00" {
		t.Errorf("expected time-only layout, got %q", resp.Sessions[0].CheckIn)
	}
}

func TestSessions_ExplicitDay(t *testing.T) {
	svc := newTestAttendanceService(&stubSource{snap: types.Snapshot{Events: amyBo}})

	resp, err := svc.Sessions(context.Background(), "2026-02-15")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(resp.Sessions))
	}
}

func TestSessions_InvalidDay(t *testing.T) {
	svc := newTestAttendanceService(&stubSource{})

	for _, day := range []string{"tomorrow", "15/02/2026", "2026-13-01"} {
		if _, err := svc.Sessions(context.Background(), day); !errors.Is(err, service.ErrInvalidDay) {
			t.Errorf("day %q: expected ErrInvalidDay, got %v", day, err)
		}
	}
}

func TestSessions_MalformedInput(t *testing.T) {
	events := append([]attendance.Event{}, amyBo...)
	events = append(events, event("p3", "Cy", attendance.ActionCheckIn, "", "Gate"))
	svc := newTestAttendanceService(&stubSource{snap: types.Snapshot{Events: events}})

	resp, err := svc.Sessions(context.Background(), "")
	if !errors.Is(err, attendance.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
	if resp.Sessions != nil {
		t.Errorf("expected no partial sessions, got %d", len(resp.Sessions))
	}
}

func TestSessions_SourceFailure(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestAttendanceService(&stubSource{err: boom})

	_, err := svc.Sessions(context.Background(), "")
	if !errors.Is(err, service.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected underlying error to be preserved, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Analytics
// ═══════════════════════════════════════════════════════════════════════════

func TestAnalytics_Today(t *testing.T) {
	events := append([]attendance.Event{}, amyBo...)
	events = append(events,
		event("p2", "", attendance.ActionCheckOut, "2026-02-15T10:05:00Z", ""),
		event("p3", "Cy", attendance.ActionCheckIn, "2026-02-15T07:15:00Z", "Gate"),
	)
	svc := newTestAttendanceService(&stubSource{snap: types.Snapshot{Events: events, TotalUsers: 7}})

	resp, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}

	if resp.Day != "2026-02-15" || resp.TimeZone != "UTC" {
		t.Errorf("unexpected day/zone %q/%q", resp.Day, resp.TimeZone)
	}
	if resp.TotalUsers != 7 {
		t.Errorf("expected total_users=7, got %d", resp.TotalUsers)
	}
	// Amy and Cy are in; Bo has left.
	if resp.ActiveUsers != 2 {
		t.Errorf("expected active_users=2, got %d", resp.ActiveUsers)
	}
	if resp.CheckInsToday != 3 || resp.CheckOutsToday != 1 {
		t.Errorf("expected 3 in / 1 out today, got %d / %d", resp.CheckInsToday, resp.CheckOutsToday)
	}
	if len(resp.Sessions) != 3 {
		t.Errorf("expected 3 sessions today, got %d", len(resp.Sessions))
	}

	if len(resp.Histogram) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(resp.Histogram))
	}
	var inWindow int
	for _, b := range resp.Histogram {
		inWindow += b.CheckIns + b.CheckOuts
	}
	// Cy's 07:15 check-in is counted today but falls outside 8..19.
	if inWindow != 3 {
		t.Errorf("expected 3 events in the histogram window, got %d", inWindow)
	}
	if resp.Histogram[0].Label != "8:00" || resp.Histogram[0].CheckIns != 1 {
		t.Errorf("unexpected 8:00 bucket %+v", resp.Histogram[0])
	}
}

func TestAnalytics_EmptySource(t *testing.T) {
	svc := newTestAttendanceService(&stubSource{})

	resp, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if resp.Sessions == nil || len(resp.Sessions) != 0 {
		t.Errorf("expected empty non-nil sessions, got %v", resp.Sessions)
	}
	if resp.ActiveUsers != 0 || resp.CheckInsToday != 0 {
		t.Errorf("expected zero counts, got %+v", resp)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// LocalSource: end to end through the access service
// ═══════════════════════════════════════════════════════════════════════════

func TestLocalSource_RecordedEventsReachSessions(t *testing.T) {
	ctx := context.Background()
	people := memory.NewPersonStore()
	events := memory.NewAccessEventStore()
	dir := service.NewPersonDirectory(people)
	rec := attendance.New(time.UTC)

	access := service.NewAccessService(dir, events, rec)
	access.SetClock(func() time.Time { return fixedNow })

	for _, req := range []types.AccessRequest{
		{PersonID: "p1", PersonName: "Amy", Action: "check_in", Location: "Lobby", OccurredAt: "2026-02-15T08:45:00Z"},
		{PersonID: "p2", PersonName: "Bo", Action: "check_in", Location: "Gate", OccurredAt: "2026-02-15T09:00:00Z"},
		{PersonID: "p1", Action: "check_out", OccurredAt: "2026-02-15T10:00:00Z"},
	} {
		if _, err := access.Record(ctx, req); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	svc := newTestAttendanceService(service.NewLocalSource(events, dir))

	resp, err := svc.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if resp.TotalUsers != 2 || resp.ActiveUsers != 1 {
		t.Errorf("expected 2 users / 1 active, got %d / %d", resp.TotalUsers, resp.ActiveUsers)
	}
	amy := resp.Sessions[0]
	if amy.PersonName != "Amy" || amy.CheckOut != "10:00:00" {
		t.Errorf("unexpected session %+v", amy)
	}

	users, err := svc.People(ctx)
	if err != nil {
		t.Fatalf("People: %v", err)
	}
	if users.Total != 2 || users.Users[0].PersonID != "p1" {
		t.Errorf("unexpected users %+v", users)
	}
}

func TestLocalSource_PassesSinceToStore(t *testing.T) {
	ctx := context.Background()
	events := memory.NewAccessEventStore()
	dir := service.NewPersonDirectory(memory.NewPersonStore())
	day := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	for _, rec := range []store.AccessEventRecord{
		{EventID: "a", PersonID: "p1", Action: "check_in", OccurredAt: day.Add(-time.Hour)},
		{EventID: "b", PersonID: "p1", Action: "check_in", OccurredAt: day.Add(9 * time.Hour)},
	} {
		if err := events.RecordEvent(ctx, rec); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	snap, err := service.NewLocalSource(events, dir).Snapshot(ctx, day)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Events) != 1 || snap.Events[0].Timestamp != "2026-02-15T09:00:00Z" {
		t.Errorf("unexpected snapshot %+v", snap.Events)
	}
}

func TestPeople_SourceFailure(t *testing.T) {
	svc := newTestAttendanceService(&stubSource{err: errors.New("down")})

	if _, err := svc.People(context.Background()); !errors.Is(err, service.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}
