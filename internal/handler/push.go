package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/homedash/internal/auth"
	"github.com/dukerupert/homedash/internal/push"
	"github.com/dukerupert/homedash/internal/store"
)

// PushHandler manages browser subscriptions for alert notifications. A nil
// service means push is not configured and every route answers 503.
type PushHandler struct {
	pushStore *store.PushStore
	service   *push.Service
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, logger: logger}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
	DeviceName string `json:"device_name"`
}

func (h *PushHandler) disabled(w http.ResponseWriter) bool {
	if h.service != nil {
		return false
	}
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Push notifications are not configured.", Kind: "push_disabled"})
	return true
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// Subscribe handles POST /api/push/subscribe. The body is the browser's
// PushSubscription JSON plus an optional device_name.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	var req subscribeRequest
	if !decode(w, r, &req) {
		return
	}
	if !strings.HasPrefix(req.Endpoint, "https://") || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		badRequest(w, "endpoint, keys.p256dh and keys.auth are required")
		return
	}

	if req.DeviceName == "" {
		req.DeviceName = auth.Name(r.Context()) + "'s browser"
	}

	sub, err := h.pushStore.CreateSubscription(auth.Email(r.Context()), req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.DeviceName)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// ListSubscriptions handles GET /api/push/subscriptions
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	subs, err := h.pushStore.ListByEmail(auth.Email(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if subs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	ok, err := h.pushStore.DeleteSubscription(id, auth.Email(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Subscription not found.", Kind: "not_found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
