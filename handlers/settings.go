package handlers

import (
	"encoding/json"
	"net/http"

	"releaseradar/config"
)

// SettingsHandler exposes the persisted configuration. Provider credentials
// are masked on read so the UI can show whether a token is set without ever
// receiving it back.
type SettingsHandler struct {
	Manager *config.Manager
}

func NewSettingsHandler(m *config.Manager) *SettingsHandler {
	return &SettingsHandler{Manager: m}
}

// SettingsResponse wraps config.Settings with derived runtime information.
type SettingsResponse struct {
	config.Settings
	TMDBConfigured bool `json:"tmdbConfigured"`
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Manager.Load()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	resp := SettingsResponse{Settings: s, TMDBConfigured: s.Providers.TMDBAccessToken != ""}
	resp.Providers.TMDBAccessToken = ""

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var s config.Settings
	dec := json.NewDecoder(r.Body)
	// Allow unknown fields for backward compatibility with old configs
	if err := dec.Decode(&s); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	// An omitted token means "keep the stored one"; masking on read would
	// otherwise erase it on every round trip.
	if s.Providers.TMDBAccessToken == "" {
		if current, err := h.Manager.Load(); err == nil {
			s.Providers.TMDBAccessToken = current.Providers.TMDBAccessToken
		}
	}

	if err := h.Manager.Save(s); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s)
}

func (h *SettingsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
