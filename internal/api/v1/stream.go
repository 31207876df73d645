package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vmunix/playhead/internal/events"
)

// streamBufferSize bounds how far a slow stream consumer may lag before the
// bus starts dropping its events.
const streamBufferSize = 64

// streamEvents serves the live event feed as server-sent events. UI surfaces
// follow session and progress changes here instead of polling the log.
// An optional replay=N re-emits the newest persisted events before the live
// feed; entity_type + entity_id narrow the feed to a single entity.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bus == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_BUS", "Event streaming not configured")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "Response writer does not support streaming")
		return
	}

	entityType := r.URL.Query().Get("entity_type")
	entityID := r.URL.Query().Get("entity_id")
	if (entityType == "") != (entityID == "") {
		writeError(w, http.StatusBadRequest, "INVALID_FILTER", "entity_type and entity_id must be given together")
		return
	}

	replay := queryInt(r, "replay", 0)
	if replay < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_REPLAY", "replay must be non-negative")
		return
	}
	if replay > 0 && s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	var ch <-chan events.Event
	if entityType != "" {
		ch = s.deps.Bus.SubscribeEntity(entityType, entityID, streamBufferSize)
	} else {
		ch = s.deps.Bus.SubscribeAll(streamBufferSize)
	}
	defer s.deps.Bus.Unsubscribe(ch)

	// The subscription is established before the headers flush: anything
	// published after the client sees the response is delivered.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if replay > 0 {
		if err := s.replayEvents(w, replay, entityType, entityID); err != nil {
			return
		}
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-ch:
			if !open {
				return
			}
			if err := writeSSE(w, e.EventType(), e); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// replayEvents re-emits the newest persisted events, oldest first, decoding
// stored payloads back into their concrete types.
func (s *Server) replayEvents(w http.ResponseWriter, limit int, entityType, entityID string) error {
	recent, _, err := s.deps.EventLog.Recent(limit, 0)
	if err != nil {
		return err
	}

	registry := events.DefaultRegistry()
	for i := len(recent) - 1; i >= 0; i-- {
		raw := recent[i]
		if entityType != "" && (raw.EntityType != entityType || raw.EntityID != entityID) {
			continue
		}
		e, err := registry.Unmarshal(raw)
		if err != nil {
			// Unknown or malformed historical payload; skip it.
			continue
		}
		if err := writeSSE(w, e.EventType(), e); err != nil {
			return err
		}
	}
	return nil
}

func writeSSE(w http.ResponseWriter, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
	return err
}
