// Package upstream talks to the Trackar REST API: it logs in with a phone and
// PIN, then fetches the dashboard analytics, access logs and users.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUnauthorized matches any *APIError with a 401 or 403 status.
	ErrUnauthorized = errors.New("upstream rejected credentials")
	ErrNoSession    = errors.New("no upstream session")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a client for the API rooted at baseURL.  A zero timeout
// means 10s.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute http(s)", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// flexString decodes a JSON string or number into a string.  The API is not
// consistent about whether ids and phones are quoted.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
}

// Login exchanges a phone and PIN for a Session.
func (c *Client) Login(ctx context.Context, phone, pin string) (*Session, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "login/", nil, loginRequest{Phone: phone, PIN: pin}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login: response carried no access_token")
	}
	return newSession(resp), nil
}

// Log is one access-log row as the API reports it.
type Log struct {
	User      flexString `json:"user"`
	Name      string     `json:"name"`
	Phone     flexString `json:"phone"`
	Action    string     `json:"action"`
	Status    string     `json:"status"`
	Timestamp string     `json:"timestamp"`
	Location  string     `json:"location"`
}

// PersonID is the user id when present, else the phone number.
func (l Log) PersonID() string {
	if l.User != "" {
		return string(l.User)
	}
	return string(l.Phone)
}

type Analytics struct {
	TotalUsers     int   `json:"total_users"`
	ActiveUsers    int   `json:"active_users"`
	CheckInsToday  int   `json:"check_ins_today"`
	CheckOutsToday int   `json:"check_outs_today"`
	RecentLogs     []Log `json:"recent_logs"`
}

func (c *Client) Analytics(ctx context.Context, s *Session) (Analytics, error) {
	var out Analytics
	if err := c.do(ctx, http.MethodGet, "api/dashboard/analytics/", s, nil, &out); err != nil {
		return Analytics{}, fmt.Errorf("analytics: %w", err)
	}
	return out, nil
}

func (c *Client) AccessLogs(ctx context.Context, s *Session) ([]Log, error) {
	var page listPage[Log]
	if err := c.do(ctx, http.MethodGet, "access/", s, nil, &page); err != nil {
		return nil, fmt.Errorf("access logs: %w", err)
	}
	return page.Items, nil
}

type User struct {
	ID    flexString `json:"id"`
	Name  string     `json:"name"`
	Phone flexString `json:"phone"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
}

// Users returns the first page of users.
func (c *Client) Users(ctx context.Context, s *Session) ([]User, error) {
	var page listPage[User]
	if err := c.do(ctx, http.MethodGet, "users/", s, nil, &page); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	return page.Items, nil
}

// listPage accepts either a bare JSON array or a paginated
// {"results": [...]} envelope.
type listPage[T any] struct {
	Items []T
}

func (p *listPage[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &p.Items)
	}
	var env struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	p.Items = env.Results
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, s *Session, body, out any) error {
	u := c.base.ResolveReference(&url.URL{Path: path})

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{StatusCode: res.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls a human message out of an error body
// ({"message"}, {"detail"} or {"error"}), falling back to the raw text.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		for _, m := range []string{body.Message, body.Detail, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "…"
	}
	return s
}
