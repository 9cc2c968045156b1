package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/homedash/internal/model"
)

// Backups runs and lists database backups. *backup.Manager satisfies it.
type Backups interface {
	Enabled() bool
	RunNow(ctx context.Context) (*model.Backup, error)
	List(limit int) ([]model.Backup, error)
}

type BackupHandler struct {
	backups Backups
	logger  *slog.Logger
}

func NewBackupHandler(b Backups, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{backups: b, logger: logger}
}

func (h *BackupHandler) disabled(w http.ResponseWriter) bool {
	if h.backups.Enabled() {
		return false
	}
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Backups are not configured.", Kind: "backup_disabled"})
	return true
}

// List handles GET /api/backups?limit=N
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			badRequest(w, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	backups, err := h.backups.List(limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

// Run handles POST /api/backups and blocks until the upload finishes.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	b, err := h.backups.RunNow(r.Context())
	if err != nil {
		h.logger.Error("manual backup", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Backup failed.", Kind: "backup_failed"})
		return
	}
	writeJSON(w, http.StatusCreated, b)
}
