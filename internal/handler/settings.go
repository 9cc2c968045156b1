package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homedash/internal/home"
)

// SettingsHandler covers alerts housekeeping, the theme and the profile.
type SettingsHandler struct {
	home   *home.Home
	logger *slog.Logger
}

func NewSettingsHandler(h *home.Home, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{home: h, logger: logger}
}

func (h *SettingsHandler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	if err := h.home.ClearAlerts(); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) MarkAlertsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.home.MarkAllRead(); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.home.ToggleTheme()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})
}

type profileRequest struct {
	Name string `json:"name"`
}

type passwordRequest struct {
	Pass    string `json:"pass"`
	Confirm string `json:"confirm"`
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.home.UpdateProfileName(req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	u, _ := h.home.ActiveUser()
	writeJSON(w, http.StatusOK, map[string]string{"name": u.Name, "email": u.Email})
}

func (h *SettingsHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.home.UpdateProfilePassword(req.Pass, req.Confirm); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
