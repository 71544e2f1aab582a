package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quocbao/facegate/internal/identity"
)

// IdentitiesHandler exposes the enrolled identity database.
type IdentitiesHandler struct {
	store identity.Store
}

// NewIdentitiesHandler creates the handler over the store.
func NewIdentitiesHandler(store identity.Store) *IdentitiesHandler {
	return &IdentitiesHandler{store: store}
}

// identitySummary is a listing entry. The reference embedding itself is
// not exposed, only its dimensionality.
type identitySummary struct {
	Name string `json:"name"`
	Dim  int    `json:"dim"`
}

// List returns every enrolled identity ordered by name.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.All(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]identitySummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, identitySummary{Name: rec.Name, Dim: len(rec.Embedding)})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":      len(summaries),
		"identities": summaries,
	})
}

// Delete removes one enrolled identity.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing identity name")
		return
	}

	if err := h.store.Delete(r.Context(), name); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			respondError(w, http.StatusNotFound, "identity not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("identity %q deleted", sanitizeForLog(name))
	w.WriteHeader(http.StatusNoContent)
}
