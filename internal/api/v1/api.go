// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Server is the v1 API server.
type Server struct {
	deps      ServerDeps
	startedAt time.Time
}

// New creates a new v1 API server.
func New(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	return &Server{deps: deps, startedAt: time.Now()}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Continue watching
	mux.HandleFunc("GET /api/v1/resume", s.listResume)
	mux.HandleFunc("GET /api/v1/resume/{unit}", s.getResume)
	mux.HandleFunc("DELETE /api/v1/resume/{unit}", s.removeResume)
	mux.HandleFunc("GET /api/v1/groups/{group}/resume", s.groupResume)

	// Session control
	mux.HandleFunc("GET /api/v1/session", s.getSession)
	mux.HandleFunc("POST /api/v1/session/load", s.requireSession(s.loadSession))
	mux.HandleFunc("POST /api/v1/session/next", s.requireSession(s.nextSession))
	mux.HandleFunc("POST /api/v1/session/previous", s.requireSession(s.previousSession))
	mux.HandleFunc("POST /api/v1/session/pause", s.requireSession(s.pauseSession))
	mux.HandleFunc("POST /api/v1/session/play", s.requireSession(s.playSession))
	mux.HandleFunc("POST /api/v1/session/source", s.requireSession(s.sourceSession))
	mux.HandleFunc("POST /api/v1/session/exit", s.requireSession(s.exitSession))

	// System
	mux.HandleFunc("GET /api/v1/events", s.listEvents)
	mux.HandleFunc("GET /api/v1/events/stream", s.streamEvents)
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:       s.deps.Version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		SessionState:  "unavailable",
	}
	if s.deps.Session != nil {
		resp.SessionState = s.deps.Session.Snapshot().State.String()
	}
	writeJSON(w, http.StatusOK, resp)
}
