package handler

import (
	"net/http"

	"github.com/Teeee306/PM-alert-bot3/internal/tracker"
)

// StatusSource supplies the current tracking state for the status endpoint.
type StatusSource interface {
	Snapshot() []tracker.StationSnapshot
}

// StatusHandler serves the per-station tracking status.
type StatusHandler struct {
	source StatusSource
}

// NewStatusHandler creates a StatusHandler reading from the given source.
func NewStatusHandler(source StatusSource) *StatusHandler {
	return &StatusHandler{source: source}
}

// GetStatus responds with the tracking state of every station.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stations": h.source.Snapshot(),
	})
}
