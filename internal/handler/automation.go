package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homedash/internal/home"
)

type AutomationHandler struct {
	home   *home.Home
	logger *slog.Logger
}

func NewAutomationHandler(h *home.Home, logger *slog.Logger) *AutomationHandler {
	return &AutomationHandler{home: h, logger: logger}
}

type automationRequest struct {
	Name     string `json:"name"`
	DeviceID string `json:"devId"`
	Action   string `json:"action"`
}

func (h *AutomationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req automationRequest
	if !decode(w, r, &req) {
		return
	}

	a, err := h.home.SaveAutomation(req.Name, req.DeviceID, req.Action)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
