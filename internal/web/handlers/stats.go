package handlers

import (
	"net/http"

	"github.com/quocbao/facegate/internal/identity"
)

// StatsHandler reports runtime counters for the frame pipeline.
type StatsHandler struct {
	store  identity.Store
	frames *FramesHandler
	hub    *Hub
}

// NewStatsHandler creates the handler.
func NewStatsHandler(store identity.Store, frames *FramesHandler, hub *Hub) *StatsHandler {
	return &StatsHandler{store: store, frames: frames, hub: hub}
}

// Get returns pipeline counters and the enrolled identity count.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.All(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identities":       len(records),
		"frames_processed": h.frames.Processed(),
		"frames_dropped":   h.frames.Dropped(),
		"subscribers":      h.hub.Subscribers(),
	})
}
