package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/quocbao/facegate/internal/identity"
)

// EnrollHandler starts enrollments and reports the active session.
type EnrollHandler struct {
	dispatcher *identity.Dispatcher
	target     int
}

// NewEnrollHandler creates the handler. target is the number of frames an
// enrollment collects, reported back to the caller on start.
func NewEnrollHandler(dispatcher *identity.Dispatcher, target int) *EnrollHandler {
	return &EnrollHandler{dispatcher: dispatcher, target: target}
}

type enrollRequest struct {
	Name string `json:"name"`
}

// Start begins an enrollment, replacing any session already collecting.
// A missing name is rejected without touching enrollment state.
func (h *EnrollHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.dispatcher.StartEnrollment(req.Name); err != nil {
		if errors.Is(err, identity.ErrEmptyName) {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("enrollment started for %q", sanitizeForLog(req.Name))
	respondJSON(w, http.StatusAccepted, map[string]any{
		"name":   req.Name,
		"target": h.target,
	})
}

// Status reports whether an enrollment is collecting and for whom.
func (h *EnrollHandler) Status(w http.ResponseWriter, r *http.Request) {
	name := h.dispatcher.Enrolling()
	respondJSON(w, http.StatusOK, map[string]any{
		"active": name != "",
		"name":   name,
		"target": h.target,
	})
}
