// Package api provides HTTP API handlers over the gesture event history.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gestellence/gestellence/internal/store"
)

// Limits for the number of events returned by one request.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

// EventHandler handles HTTP requests for gesture events.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates a new EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

// ServeHTTP routes /api/events and /api/events/counts.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		h.list(w, r)
	case "counts":
		h.counts(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type eventResponse struct {
	ID          string `json:"id"`
	Gesture     string `json:"gesture"`
	Previous    string `json:"previous"`
	Hands       int    `json:"hands"`
	TimestampMs int64  `json:"timestamp_ms"`
	CreatedAt   string `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type countsResponse struct {
	Counts map[string]int `json:"counts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Gesture:     e.Gesture,
		Previous:    e.Previous,
		Hands:       e.Hands,
		TimestampMs: e.TimestampMs,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// parseLimit reads the limit query parameter.
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultEventLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxEventLimit {
		return 0, false
	}
	return n, true
}

// list handles GET /api/events and returns the most recent events.
func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(MaxEventLimit))
		return
	}

	events, err := h.store.Events().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		Events: make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		response.Events = append(response.Events, toResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

// counts handles GET /api/events/counts.
func (h *EventHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Events().CountByGesture()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}
	writeJSON(w, http.StatusOK, countsResponse{Counts: counts})
}
