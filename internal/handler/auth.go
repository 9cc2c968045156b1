package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homedash/internal/home"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/view"
)

// AuthHandler serves the login, register and forgot-password forms and
// navigation between them. Successful calls answer with the fresh view.
type AuthHandler struct {
	home   *home.Home
	logger *slog.Logger
}

func NewAuthHandler(h *home.Home, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{home: h, logger: logger}
}

type registerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Pass    string `json:"pass"`
	Confirm string `json:"confirm"`
}

type loginRequest struct {
	Email string `json:"email"`
	Pass  string `json:"pass"`
}

type navigateRequest struct {
	Screen model.Screen `json:"screen"`
	Page   model.Page   `json:"page"`
}

func (h *AuthHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Current(h.home, h.home.Rand()))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.home.Register(req.Name, req.Email, req.Pass, req.Confirm))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.home.Login(req.Email, req.Pass))
}

func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.home.ResetPassword(req.Email, req.Pass, req.Confirm))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.home.Logout())
}

// Navigate switches the auth form, or the app page when page is set.
func (h *AuthHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.Page != "":
		h.respond(w, h.home.ShowPage(req.Page))
	case req.Screen != "":
		h.respond(w, h.home.Navigate(req.Screen))
	default:
		badRequest(w, "screen or page is required")
	}
}
