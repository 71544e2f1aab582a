package handlers

import (
	"net/http"

	"github.com/quocbao/facegate/internal/config"
)

// ConfigHandler reports the non-secret runtime configuration so operator
// UIs can display the matching and detector parameters in effect.
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates the handler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// Get returns the active configuration.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"threshold":     h.config.Identity.Threshold,
		"enroll_target": h.config.Identity.EnrollTarget,
		"embedding_dim": h.config.Embedding.Dim,
		"detector": map[string]any{
			"model":            h.config.Detector.Model,
			"image_size":       h.config.Detector.ImageSize,
			"margin":           h.config.Detector.Margin,
			"min_face_size":    h.config.Detector.MinFaceSize,
			"stage_thresholds": h.config.Detector.StageThresholds,
		},
	})
}
