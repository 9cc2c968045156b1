package handler

import (
	"net/http"

	"github.com/dukerupert/homedash/internal/weather"
)

type WeatherHandler struct {
	weather *weather.Service
}

func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{weather: svc}
}

// Current handles GET /api/weather. Unconfigured or failing lookups still
// answer 200; the configured and available flags tell the page what to show.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.weather.Current(r.Context()))
}
