package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/trackar/types"
)

var (
	ErrInvalidDay = errors.New("day must be \"today\" or YYYY-MM-DD")

	// ErrSourceUnavailable wraps any failure to fetch the event stream.
	ErrSourceUnavailable = errors.New("event source unavailable")
)

const tracerName = "github.com/trackar/server/internal/trackar/service"

// AttendanceService builds every attendance view from one Source through one
// Reconstructor, so the logs table, the dashboard and the report agree.
type AttendanceService struct {
	source Source
	rec    *attendance.Reconstructor
	window attendance.HourWindow
	tracer trace.Tracer
	now    func() time.Time
}

func NewAttendanceService(src Source, rec *attendance.Reconstructor, window attendance.HourWindow) *AttendanceService {
	if rec == nil {
		rec = attendance.New(time.UTC)
	}
	if window.Validate() != nil {
		window = attendance.DefaultHourWindow
	}
	return &AttendanceService{
		source: src,
		rec:    rec,
		window: window,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

// SetClock replaces the clock used to resolve "today".  Tests only.
func (s *AttendanceService) SetClock(now func() time.Time) { s.now = now }

// ResolveDay turns the day query value into a reference day.  "" selects
// every day (zero time).
func (s *AttendanceService) ResolveDay(day string) (time.Time, error) {
	day = strings.TrimSpace(day)
	switch strings.ToLower(day) {
	case "":
		return time.Time{}, nil
	case "today":
		return s.rec.Midnight(s.now()), nil
	}
	t, err := time.ParseInLocation(attendance.DayLayout, day, s.rec.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return t, nil
}

// Sessions reconstructs sessions for one day (at-or-after its midnight, as
// the today view does) or for all days when day is "".
func (s *AttendanceService) Sessions(ctx context.Context, day string) (types.SessionsResponse, error) {
	ref, err := s.ResolveDay(day)
	if err != nil {
		return types.SessionsResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "AttendanceService.Sessions")
	defer span.End()

	snap, err := s.snapshot(ctx, span, ref)
	if err != nil {
		return types.SessionsResponse{}, err
	}

	sessions, err := s.reconstruct(span, snap.Events, ref)
	if err != nil {
		return types.SessionsResponse{}, err
	}

	resp := types.SessionsResponse{
		TimeZone: s.rec.Location().String(),
		Summary:  types.NewSummaryView(attendance.Summarize(sessions)),
	}
	layout := attendance.DateTimeLayout
	if !ref.IsZero() {
		resp.Day = ref.Format(attendance.DayLayout)
		layout = attendance.TimeLayout
	}
	resp.Sessions = types.NewSessionViews(sessions, layout)
	return resp, nil
}

// Analytics computes the dashboard for the current day.
func (s *AttendanceService) Analytics(ctx context.Context) (types.AnalyticsResponse, error) {
	now := s.now()
	ref := s.rec.Midnight(now)

	ctx, span := s.tracer.Start(ctx, "AttendanceService.Analytics")
	defer span.End()

	snap, err := s.snapshot(ctx, span, ref)
	if err != nil {
		return types.AnalyticsResponse{}, err
	}

	today, err := s.rec.FilterDay(snap.Events, ref)
	if err != nil {
		return types.AnalyticsResponse{}, s.fail(span, err)
	}
	sessions, err := s.reconstruct(span, today, ref)
	if err != nil {
		return types.AnalyticsResponse{}, err
	}
	buckets, err := s.rec.Histogram(today, s.window)
	if err != nil {
		return types.AnalyticsResponse{}, s.fail(span, err)
	}
	counts, err := s.rec.CountActions(today, ref)
	if err != nil {
		return types.AnalyticsResponse{}, s.fail(span, err)
	}

	summary := attendance.Summarize(sessions)
	return types.AnalyticsResponse{
		Day:            ref.Format(attendance.DayLayout),
		TimeZone:       s.rec.Location().String(),
		TotalUsers:     snap.TotalUsers,
		ActiveUsers:    summary.Active,
		CheckInsToday:  counts.CheckIns,
		CheckOutsToday: counts.CheckOuts,
		Summary:        types.NewSummaryView(summary),
		Histogram:      types.NewHourBucketViews(buckets),
		Sessions:       types.NewSessionViews(sessions, attendance.TimeLayout),
		GeneratedAt:    now.UTC().Format(time.RFC3339),
	}, nil
}

func (s *AttendanceService) People(ctx context.Context) (types.UsersResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AttendanceService.People")
	defer span.End()

	people, err := s.source.People(ctx)
	if err != nil {
		return types.UsersResponse{}, s.fail(span, fmt.Errorf("%w: %w", ErrSourceUnavailable, err))
	}
	if people == nil {
		people = []types.Person{}
	}
	return types.UsersResponse{Users: people, Total: len(people)}, nil
}

func (s *AttendanceService) snapshot(ctx context.Context, span trace.Span, since time.Time) (types.Snapshot, error) {
	snap, err := s.source.Snapshot(ctx, since)
	if err != nil {
		return types.Snapshot{}, s.fail(span, fmt.Errorf("%w: %w", ErrSourceUnavailable, err))
	}
	span.SetAttributes(attribute.Int("trackar.events", len(snap.Events)))
	return snap, nil
}

func (s *AttendanceService) reconstruct(span trace.Span, events []attendance.Event, ref time.Time) ([]attendance.Session, error) {
	sessions, err := s.rec.Reconstruct(events, ref)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Int("trackar.sessions", len(sessions)))
	return sessions, nil
}

func (s *AttendanceService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
