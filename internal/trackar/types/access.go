package types

// AccessRequest is a check-in/check-out submission from a kiosk, scanner or
// the web front end.
type AccessRequest struct {
	PersonID   string `json:"person_id"`
	PersonName string `json:"person_name,omitempty"`
	Action     string `json:"action"`
	Location   string `json:"location,omitempty"`
	OccurredAt string `json:"occurred_at,omitempty"` // optional client timestamp
}

type AccessResponse struct {
	OK         bool   `json:"ok"`
	EventID    string `json:"event_id"`
	PersonID   string `json:"person_id"`
	Action     string `json:"action"`
	OccurredAt string `json:"occurred_at"`
	ServerTime string `json:"server_time"`
}
