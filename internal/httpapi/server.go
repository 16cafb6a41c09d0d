package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/trackar/service"
	"github.com/trackar/server/internal/trackar/types"
)

type Dependencies struct {
	Logger            *log.Logger
	Addr              string
	AccessService     *service.AccessService
	AttendanceService *service.AttendanceService
}

type Server struct {
	httpServer        *http.Server
	logger            *log.Logger
	mux               *http.ServeMux
	accessService     *service.AccessService
	attendanceService *service.AttendanceService
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:            d.Logger,
		mux:               mux,
		accessService:     d.AccessService,
		attendanceService: d.AttendanceService,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /v1/access", s.handleAccess)
	mux.HandleFunc("GET /v1/sessions", s.handleSessions)
	mux.HandleFunc("GET /v1/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /v1/users", s.handleUsers)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	var req types.AccessRequest

	if isProtobuf(r) {
		msg, err := readStruct(r)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "bad_protobuf", "invalid protobuf body")
			return
		}
		req = accessRequestFromStruct(msg)
	} else {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		dec.DisallowUnknownFields()

		if err := dec.Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "bad_json", "invalid JSON body")
			return
		}
	}

	resp, err := s.accessService.Record(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPersonID):
			respondError(w, r, http.StatusBadRequest, "invalid_person_id", err.Error())
		case errors.Is(err, service.ErrInvalidAction):
			respondError(w, r, http.StatusBadRequest, "invalid_action", err.Error())
		case errors.Is(err, service.ErrInvalidTimestamp):
			respondError(w, r, http.StatusBadRequest, "invalid_timestamp", err.Error())
		default:
			s.logger.Printf("access error: %v", err)
			respondError(w, r, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	respond(w, r, http.StatusCreated, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.attendanceService.Sessions(r.Context(), r.URL.Query().Get("day"))
	if err != nil {
		s.attendanceError(w, r, "sessions", err)
		return
	}
	respond(w, r, http.StatusOK, resp)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.attendanceService.Analytics(r.Context())
	if err != nil {
		s.attendanceError(w, r, "analytics", err)
		return
	}
	respond(w, r, http.StatusOK, resp)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.attendanceService.People(r.Context())
	if err != nil {
		s.attendanceError(w, r, "users", err)
		return
	}
	respond(w, r, http.StatusOK, resp)
}

// attendanceError maps read-path errors.  A malformed event stream is never
// rendered as a partial table.
func (s *Server) attendanceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDay):
		respondError(w, r, http.StatusBadRequest, "invalid_day", err.Error())
	case errors.Is(err, attendance.ErrMalformedInput):
		s.logger.Printf("%s: %v", op, err)
		respondError(w, r, http.StatusServiceUnavailable, "data_unavailable", "attendance data is unavailable")
	case errors.Is(err, service.ErrSourceUnavailable):
		s.logger.Printf("%s: %v", op, err)
		respondError(w, r, http.StatusBadGateway, "upstream_error", "event source unavailable")
	default:
		s.logger.Printf("%s error: %v", op, err)
		respondError(w, r, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
