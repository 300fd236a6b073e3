package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/records"
	"github.com/vk/ednavoyage/internal/sequencer"
)

const maxBodyBytes = 1 << 20

// Sequencer is the part of *sequencer.Sequencer the API drives.
type Sequencer interface {
	Snapshot() sequencer.Snapshot
	Start(ctx context.Context)
	SetAggregation(level string) error
	Levels() []string
}

// Services are the backends behind the routes. Live is optional and mounted
// at /socket.io/ when set.
type Services struct {
	Sequencer Sequencer
	Users     *records.Users
	Analysis  *records.Analysis
	Projects  *records.Projects
	Live      http.Handler
}

// Server routes API requests to the services.
type Server struct {
	ctx    context.Context
	logger *slog.Logger
	svc    Services
	mux    *http.ServeMux
}

// New builds the API. Sequencer runs restarted through the API are bound to
// ctx, which also carries the logger.
func New(ctx context.Context, svc Services) *Server {
	s := &Server{
		ctx:    ctx,
		logger: ctxlog.FromContext(ctx).With("component", "httpapi"),
		svc:    svc,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("HTTP request.", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	r = r.WithContext(ctxlog.WithLogger(r.Context(), s.logger))
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.health)

	s.mux.HandleFunc("GET /api/snapshot", s.getSnapshot)
	s.mux.HandleFunc("GET /api/grid", s.getGrid)
	s.mux.HandleFunc("POST /api/sequence/restart", s.restartSequence)
	s.mux.HandleFunc("POST /api/sequence/aggregation", s.setAggregation)

	s.mux.HandleFunc("GET /api/projects", s.listProjects)
	s.mux.HandleFunc("POST /api/projects", s.createProject)
	s.mux.HandleFunc("GET /api/projects/{id}", s.getProject)
	s.mux.HandleFunc("PATCH /api/projects/{id}", s.updateProject)
	s.mux.HandleFunc("DELETE /api/projects/{id}", s.deleteProject)

	s.mux.HandleFunc("GET /api/files", s.listFiles)
	s.mux.HandleFunc("DELETE /api/files/{id}", s.deleteFile)
	s.mux.HandleFunc("GET /api/results", s.listResults)

	s.mux.HandleFunc("POST /api/signup", s.signup)
	s.mux.HandleFunc("POST /api/session", s.login)
	s.mux.HandleFunc("GET /api/session", s.currentSession)
	s.mux.HandleFunc("DELETE /api/session", s.logout)
	s.mux.HandleFunc("PATCH /api/profile", s.updateProfile)

	if s.svc.Live != nil {
		s.mux.Handle("/socket.io/", s.svc.Live)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and writes it as JSON.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		ctxlog.FromContext(r.Context()).Error("Request failed.", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, records.ErrMissingField),
		errors.Is(err, records.ErrInvalidValue),
		errors.Is(err, sequencer.ErrUnknownLevel):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, records.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, records.ErrUnknownUser),
		errors.Is(err, records.ErrNotAuthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
