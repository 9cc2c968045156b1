package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homedash/internal/home"
	"github.com/dukerupert/homedash/internal/model"
)

type DeviceHandler struct {
	home   *home.Home
	logger *slog.Logger
}

func NewDeviceHandler(h *home.Home, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{home: h, logger: logger}
}

type deviceRequest struct {
	Name string           `json:"name"`
	Type model.DeviceType `json:"type"`
}

func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if !decode(w, r, &req) {
		return
	}

	d, err := h.home.AddDevice(req.Name, req.Type)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DeviceHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	d, err := h.home.ToggleDevice(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	if err := h.home.RemoveDevice(id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
