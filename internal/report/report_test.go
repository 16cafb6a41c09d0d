package report_test

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/trackar/server/internal/report"
	"github.com/trackar/server/internal/trackar/types"
)

var today = types.SessionsResponse{
	Day:      "2026-02-15",
	TimeZone: "UTC",
	Sessions: []types.SessionView{
		{PersonName: "Amy", Day: "2026-02-15", Location: "Lobby", CheckIn: "08:45:00", StatusLabel: "In Office"},
		{PersonName: "Bo", Day: "2026-02-15", Location: "Gate", CheckIn: "09:00:00", CheckOut: "17:00:00", StatusLabel: "Departed"},
	},
	Summary: types.SummaryView{Total: 2, Active: 1, Departed: 1, CheckedInOnly: 1},
}

func TestRender_English(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Render(&buf, today, language.English); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Attendance for 2026-02-15 (UTC)",
		"NAME",
		"Amy",
		"In Office",
		"17:00:00",
		"2 sessions: 1 in office, 1 departed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Amy has no check-out yet.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Amy") && !strings.Contains(line, " - ") {
			t.Errorf("expected dash for missing check-out: %q", line)
		}
	}
}

func TestRender_French(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Render(&buf, today, language.French); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Présence du 2026-02-15", "NOM", "Au bureau", "Parti", "2 sessions : 1 au bureau, 1 partis"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := report.Render(&buf, types.SessionsResponse{TimeZone: "UTC"}, language.English)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Attendance, all days (UTC)") || !strings.Contains(buf.String(), "No sessions.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
