package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/playhead/internal/catalog"
	"github.com/vmunix/playhead/internal/session"
)

// requireSession wraps a handler and returns 503 if no player is configured.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Session == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Playback session not configured")
			return
		}
		next(w, r)
	}
}

func (s *Server) snapshotResponse() sessionResponse {
	snap := s.deps.Session.Snapshot()
	resp := sessionResponse{
		State:      snap.State.String(),
		SourceURL:  snap.SourceURL,
		PositionMS: snap.PositionMS,
		DurationMS: snap.DurationMS,
	}
	if snap.Unit != nil {
		resp.UnitID = snap.Unit.ID
		resp.GroupID = snap.Unit.GroupID
		resp.UnitTitle = snap.Unit.Title
		for _, src := range snap.Unit.Sources {
			resp.Sources = append(resp.Sources, src.URL)
		}
	}
	return resp
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Playback session not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

type loadRequest struct {
	UnitID string `json:"unit_id"`
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UnitID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "unit_id is required")
		return
	}

	if err := s.deps.Session.Load(r.Context(), req.UnitID); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) nextSession(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, s.deps.Session.RequestNext)
}

func (s *Server) previousSession(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, s.deps.Session.RequestPrevious)
}

func (s *Server) pauseSession(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, s.deps.Session.Pause)
}

func (s *Server) playSession(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, s.deps.Session.Play)
}

func (s *Server) exitSession(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, s.deps.Session.Exit)
}

type sourceRequest struct {
	URL string `json:"url"`
}

func (s *Server) sourceSession(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "url is required")
		return
	}

	if err := s.deps.Session.SelectSource(r.Context(), req.URL); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) control(w http.ResponseWriter, r *http.Request, op func(context.Context) error) {
	if err := op(r.Context()); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotLoaded):
		writeError(w, http.StatusConflict, "NOT_LOADED", err.Error())
	case errors.Is(err, session.ErrNoSuccessor), errors.Is(err, session.ErrNoPredecessor):
		writeError(w, http.StatusConflict, "NO_NEIGHBOR", err.Error())
	case errors.Is(err, session.ErrUnknownSource):
		writeError(w, http.StatusBadRequest, "UNKNOWN_SOURCE", err.Error())
	case errors.Is(err, session.ErrNoPlayableSource):
		writeError(w, http.StatusUnprocessableEntity, "NO_PLAYABLE_SOURCE", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "METADATA_UNAVAILABLE", err.Error())
	}
}
