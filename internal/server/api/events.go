package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/tofgesture/internal/store"
)

// DefaultEventLimit is the number of events returned when no limit is given.
const DefaultEventLimit = 100

// EventHandler serves the gesture event log.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates a new EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

// ServeHTTP routes /api/events and /api/events/stats.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case path == "" && r.Method == http.MethodDelete:
		h.prune(w, r)
	case path == "stats" && r.Method == http.MethodGet:
		h.stats(w, r)
	case path == "" || path == "stats":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

type handResponse struct {
	R     float64 `json:"r"`
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}

type eventResponse struct {
	ID          string        `json:"id"`
	Gesture     string        `json:"gesture"`
	Hand        *handResponse `json:"hand,omitempty"`
	FrameTimeMs int64         `json:"frame_time_ms"`
	ActionID    string        `json:"action_id,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

func toEventResponse(e *store.Event) eventResponse {
	resp := eventResponse{
		ID:          e.ID,
		Gesture:     e.Gesture,
		FrameTimeMs: e.FrameTimeMs,
		ActionID:    e.ActionID,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.HandFound {
		resp.Hand = &handResponse{R: e.R, Theta: e.Theta, Phi: e.Phi}
	}
	return resp
}

// list handles GET /api/events?limit=N&gesture=name, newest first.
func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	filter := r.URL.Query().Get("gesture")

	// Filtering happens after the query, so fetch everything when filtering.
	fetch := limit
	if filter != "" {
		fetch = 0
	}
	events, err := h.store.Events().List(fetch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		if filter != "" && e.Gesture != filter {
			continue
		}
		response.Events = append(response.Events, toEventResponse(e))
		if len(response.Events) == limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// stats handles GET /api/events/stats and returns counts per gesture.
func (h *EventHandler) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Events().CountByGesture()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts, "total": total})
}

// prune handles DELETE /api/events?before=<RFC 3339 time>.
func (h *EventHandler) prune(w http.ResponseWriter, r *http.Request) {
	before, err := time.Parse(time.RFC3339, r.URL.Query().Get("before"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "before must be an RFC 3339 time")
		return
	}

	n, err := h.store.Events().DeleteBefore(before)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
