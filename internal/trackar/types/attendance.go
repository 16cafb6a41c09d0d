package types

import "github.com/trackar/server/internal/attendance"

// Snapshot is everything a Source knows at one point in time: the raw event
// stream plus the size of the people directory.
type Snapshot struct {
	Events     []attendance.Event
	TotalUsers int
}

type Person struct {
	PersonID    string `json:"person_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
	FirstSeen   string `json:"first_seen,omitempty"`
	LastSeen    string `json:"last_seen,omitempty"`
}

type UsersResponse struct {
	Users []Person `json:"users"`
	Total int      `json:"total"`
}

// SessionView is one row of the logs table.  Empty names and locations are
// replaced with placeholders; check_in/check_out are "" when unset.
type SessionView struct {
	PersonID    string `json:"person_id"`
	PersonName  string `json:"person_name"`
	Day         string `json:"day"`
	Location    string `json:"location"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
}

const (
	UnknownPersonName = "Unknown"
	UnknownLocation   = "-"
)

// NewSessionView renders s with layout (attendance.DateTimeLayout for the
// all-days view, attendance.TimeLayout for a single day).
func NewSessionView(s attendance.Session, layout string) SessionView {
	name := s.PersonName
	if name == "" {
		name = UnknownPersonName
	}
	loc := s.Location
	if loc == "" {
		loc = UnknownLocation
	}
	st := s.Status()
	return SessionView{
		PersonID:    s.PersonID,
		PersonName:  name,
		Day:         s.Day,
		Location:    loc,
		CheckIn:     attendance.FormatTime(s.CheckIn, layout),
		CheckOut:    attendance.FormatTime(s.CheckOut, layout),
		Status:      string(st),
		StatusLabel: st.Label(),
	}
}

func NewSessionViews(sessions []attendance.Session, layout string) []SessionView {
	out := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, NewSessionView(s, layout))
	}
	return out
}

type SummaryView struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	Departed      int `json:"departed"`
	CheckedInOnly int `json:"checked_in_only"`
}

func NewSummaryView(s attendance.Summary) SummaryView {
	return SummaryView{
		Total:         s.Total,
		Active:        s.Active,
		Departed:      s.Departed,
		CheckedInOnly: s.CheckedInOnly,
	}
}

type SessionsResponse struct {
	Day      string        `json:"day,omitempty"` // "" for the all-days view
	TimeZone string        `json:"time_zone"`
	Sessions []SessionView `json:"sessions"`
	Summary  SummaryView   `json:"summary"`
}

type HourBucketView struct {
	Hour      int    `json:"hour"`
	Label     string `json:"label"`
	CheckIns  int    `json:"check_ins"`
	CheckOuts int    `json:"check_outs"`
}

func NewHourBucketViews(buckets []attendance.HourBucket) []HourBucketView {
	out := make([]HourBucketView, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, HourBucketView{
			Hour:      b.Hour,
			Label:     b.Label(),
			CheckIns:  b.CheckIns,
			CheckOuts: b.CheckOuts,
		})
	}
	return out
}

// AnalyticsResponse backs the dashboard cards, the hourly chart and the
// "today" table.
type AnalyticsResponse struct {
	Day            string           `json:"day"`
	TimeZone       string           `json:"time_zone"`
	TotalUsers     int              `json:"total_users"`
	ActiveUsers    int              `json:"active_users"`
	CheckInsToday  int              `json:"check_ins_today"`
	CheckOutsToday int              `json:"check_outs_today"`
	Summary        SummaryView      `json:"summary"`
	Histogram      []HourBucketView `json:"histogram"`
	Sessions       []SessionView    `json:"sessions"`
	GeneratedAt    string           `json:"generated_at"`
}
