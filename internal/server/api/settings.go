package api

import (
	"encoding/json"
	"net/http"
)

// SettingsHandler reads and writes user settings.
//
//	GET /api/settings          all settings
//	PUT /api/settings {k: v}   set values
type SettingsHandler struct {
	store settingsStore
}

type settingsStore interface {
	All() (map[string]string, error)
	Set(key, value string) error
}

// NewSettingsHandler creates a SettingsHandler over the store's settings.
func NewSettingsHandler(s settingsStore) *SettingsHandler {
	return &SettingsHandler{store: s}
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		all, err := h.store.All()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to read settings")
			return
		}
		writeJSON(w, http.StatusOK, all)
	case http.MethodPut:
		var values map[string]string
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		for k, v := range values {
			if k == "" {
				writeError(w, http.StatusBadRequest, "Setting keys must not be empty")
				return
			}
			if err := h.store.Set(k, v); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save settings")
				return
			}
		}
		writeJSON(w, http.StatusOK, values)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
