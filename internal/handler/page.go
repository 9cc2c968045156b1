package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"slices"

	"github.com/dukerupert/homedash/internal/home"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/sw.js
var serviceWorker []byte

var funcs = template.FuncMap{
	// percent scales v against the largest value in vs, for CSS bar widths.
	"percent": func(v int, vs []int) int {
		top := 0
		if len(vs) > 0 {
			top = slices.Max(vs)
		}
		if top <= 0 {
			return 0
		}
		return v * 100 / top
	},
	"pages": func() []model.Page { return model.Pages },
}

// PageHandler renders the dashboard as HTML and JSON.
type PageHandler struct {
	home      *home.Home
	templates *template.Template
	logger    *slog.Logger
}

func NewPageHandler(h *home.Home, logger *slog.Logger) *PageHandler {
	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &PageHandler{home: h, templates: tmpl, logger: logger}
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	vm := view.Current(h.home, h.home.Rand())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "dashboard.html", vm); err != nil {
		h.logger.Error("render dashboard", "error", err)
	}
}

func (h *PageHandler) View(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.Current(h.home, h.home.Rand()))
}

// ServiceWorker serves the script that shows push notifications. It must be
// served from the root so its scope covers the dashboard.
func (h *PageHandler) ServiceWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(serviceWorker)
}
