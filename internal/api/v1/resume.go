package v1

import (
	"errors"
	"net/http"

	"github.com/vmunix/playhead/internal/resume"
)

func toResumeResponse(r *resume.Record) resumeResponse {
	return resumeResponse{
		UnitID:       r.UnitID,
		GroupID:      r.GroupID,
		GroupTitle:   r.GroupTitle,
		UnitTitle:    r.UnitTitle,
		UnitSequence: r.UnitSequence,
		Thumbnail:    r.ThumbnailRef,
		PositionMS:   r.PositionMS,
		DurationMS:   r.DurationMS,
		Fraction:     r.Fraction(),
		UpdatedAtMS:  r.UpdatedAtMS,
	}
}

func (s *Server) listResume(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", resume.DefaultRailSize)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be non-negative")
		return
	}

	records, err := s.deps.Aggregator.ContinueWatching(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	resp := listResumeResponse{Items: make([]resumeResponse, len(records)), Limit: limit}
	for i, rec := range records {
		resp.Items[i] = toResumeResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getResume(w http.ResponseWriter, r *http.Request) {
	unitID := r.PathValue("unit")

	rec, err := s.deps.Store.Get(unitID)
	if errors.Is(err, resume.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "No continuation record for unit")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toResumeResponse(rec))
}

func (s *Server) removeResume(w http.ResponseWriter, r *http.Request) {
	unitID := r.PathValue("unit")

	// Idempotent: removing an absent record succeeds.
	if err := s.deps.Tracker.Remove(r.Context(), unitID); err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// groupResume returns the group's continuation point. 404 means the group
// has none; clients start from the first unit.
func (s *Server) groupResume(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("group")

	rec, err := s.deps.Aggregator.LatestForGroup(groupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "No continuation record for group")
		return
	}

	writeJSON(w, http.StatusOK, toResumeResponse(rec))
}
