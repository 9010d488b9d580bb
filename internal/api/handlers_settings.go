package api

import (
	"errors"
	"net/http"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/settings"
)

type SettingsHandler struct {
	settings *settings.Manager
}

func NewSettingsHandler(settings *settings.Manager) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Snapshot())
}

// Patch handles PATCH /settings
func (h *SettingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.settings.Patch(&patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// RestoreDefaults handles POST /settings/restore-defaults
func (h *SettingsHandler) RestoreDefaults(w http.ResponseWriter, r *http.Request) {
	restored, err := h.settings.RestoreDefaults()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restored)
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var cfgErr *models.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusBadRequest, cfgErr.Error())
	case errors.Is(err, models.ErrDimensionMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrOperationInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
