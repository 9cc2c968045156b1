package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/homedash/internal/home"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "bad_request"})
}

// writeError maps an error from home to a status code. Validation messages
// are shown to the user verbatim; anything unexpected is logged and hidden.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *home.ValidationError
	switch {
	case errors.As(err, &ve):
		status := http.StatusBadRequest
		switch ve.Kind {
		case home.KindInvalidCredentials:
			status = http.StatusUnauthorized
		case home.KindNotFound:
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse{Error: ve.Msg, Kind: string(ve.Kind)})
	case errors.Is(err, home.ErrNoSession):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not logged in.", Kind: "no_session"})
	case errors.Is(err, home.ErrDeviceNotResponding):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Device not responding.", Kind: "device_not_responding"})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Something went wrong.", Kind: "internal"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON")
		return false
	}
	return true
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
