package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/homedash/internal/backup"
	"github.com/dukerupert/homedash/internal/config"
	"github.com/dukerupert/homedash/internal/handler"
	"github.com/dukerupert/homedash/internal/home"
	"github.com/dukerupert/homedash/internal/metrics"
	"github.com/dukerupert/homedash/internal/middleware"
	"github.com/dukerupert/homedash/internal/push"
	"github.com/dukerupert/homedash/internal/simulate"
	"github.com/dukerupert/homedash/internal/store"
	"github.com/dukerupert/homedash/internal/weather"
	ws "github.com/dukerupert/homedash/internal/websocket"
)

type Server struct {
	db          *sql.DB
	home        *home.Home
	hub         *ws.Hub
	metrics     *metrics.Recorder
	authH       *handler.AuthHandler
	deviceH     *handler.DeviceHandler
	automationH *handler.AutomationHandler
	settingsH   *handler.SettingsHandler
	pageH       *handler.PageHandler
	pushH       *handler.PushHandler
	backupH     *handler.BackupHandler
	weatherH    *handler.WeatherHandler
	forwarder   *push.Forwarder
	backups     *backup.Manager
	rateLimiter *middleware.RateLimiter
	loginLimit  int
	scheduler   *simulate.Scheduler
	logger      *slog.Logger
}

// New loads the stored dashboard state and wires every component around it.
// Extra options are applied to the home after the defaults, so callers can
// swap the clock or random source.
func New(db *sql.DB, cfg *config.Config, logger *slog.Logger, opts ...home.Option) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))
	recorder := metrics.New()
	recorder.WatchHub(hub)

	stateStore := store.NewStateStore(store.NewKVStore(db))
	state, err := stateStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	pushStore := store.NewPushStore(db)
	var (
		pushSvc   *push.Service
		forwarder *push.Forwarder
		observer  home.Observer = recorder
	)
	if cfg.Push.Enabled() {
		pushSvc = push.NewService(cfg.PushService())
		forwarder = push.NewForwarder(pushSvc, pushStore, logger.With("component", "push"))
		observer = home.Observers(recorder, forwarder)
	}

	backups := backup.NewManager(cfg.BackupManager(), db, store.NewBackupStore(db), logger.With("component", "backup"))
	weatherSvc := weather.NewService(cfg.WeatherService(), weather.WithLogger(logger.With("component", "weather")))

	homeOpts := []home.Option{
		home.WithRefresh(hub.NotifyStateChanged),
		home.WithObserver(observer),
		home.WithLogger(logger.With("component", "home")),
		home.WithAutomationFailureRate(cfg.AutomationFailureRate),
	}
	h := home.New(state, stateStore, append(homeOpts, opts...)...)

	return &Server{
		db:          db,
		home:        h,
		hub:         hub,
		metrics:     recorder,
		authH:       handler.NewAuthHandler(h, logger.With("component", "auth")),
		deviceH:     handler.NewDeviceHandler(h, logger.With("component", "device")),
		automationH: handler.NewAutomationHandler(h, logger.With("component", "automation")),
		settingsH:   handler.NewSettingsHandler(h, logger.With("component", "settings")),
		pageH:       handler.NewPageHandler(h, logger.With("component", "page")),
		pushH:       handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		backupH:     handler.NewBackupHandler(backups, logger.With("component", "backup")),
		weatherH:    handler.NewWeatherHandler(weatherSvc),
		forwarder:   forwarder,
		backups:     backups,
		rateLimiter: middleware.NewRateLimiter(),
		loginLimit:  cfg.LoginAttemptsPerMinute,
		scheduler:   simulate.NewScheduler(h, h.Rand(), cfg.SimulatorList(), logger.With("component", "simulate")),
		logger:      logger,
	}, nil
}

// Home returns the dashboard state shared by every route.
func (s *Server) Home() *home.Home {
	return s.home
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Backups returns the backup manager.
func (s *Server) Backups() *backup.Manager {
	return s.backups
}

// Start launches the background simulators, push delivery, scheduled
// backups and the rate limiter cleanup. All of them stop when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start simulators: %w", err)
	}
	if s.forwarder != nil {
		if err := s.forwarder.Start(ctx); err != nil {
			return fmt.Errorf("start push forwarder: %w", err)
		}
	}
	if err := s.backups.Start(ctx); err != nil {
		return fmt.Errorf("start backups: %w", err)
	}
	go s.rateLimiter.RunCleanup(ctx, time.Minute)
	return nil
}

// Stop waits for in-flight simulator ticks, pushes and backups to finish.
func (s *Server) Stop() {
	s.scheduler.Stop()
	if s.forwarder != nil {
		s.forwarder.Stop()
	}
	s.backups.Stop()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/register", s.authH.Register)
	mux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("POST /api/forgot", s.authH.Forgot)
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("POST /api/navigate", s.authH.Navigate)
	mux.HandleFunc("GET /api/view", s.pageH.View)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("GET /sw.js", s.pageH.ServiceWorker)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /", s.pageH.Dashboard)

	s.registerProtectedRoutes(mux)

	handler := s.metrics.Instrument(mux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(handler)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	requireSession := middleware.RequireSession(s.home)
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireSession(h))
	}

	protect("POST /api/devices", s.deviceH.Create)
	protect("POST /api/devices/{id}/toggle", s.deviceH.Toggle)
	protect("DELETE /api/devices/{id}", s.deviceH.Delete)

	protect("POST /api/automations", s.automationH.Create)

	protect("POST /api/alerts/clear", s.settingsH.ClearAlerts)
	protect("POST /api/alerts/read", s.settingsH.MarkAlertsRead)

	protect("POST /api/theme/toggle", s.settingsH.ToggleTheme)
	protect("PUT /api/profile", s.settingsH.UpdateProfile)
	protect("PUT /api/profile/password", s.settingsH.UpdatePassword)

	protect("POST /api/push/subscribe", s.pushH.Subscribe)
	protect("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	protect("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)

	protect("GET /api/weather", s.weatherH.Current)

	protect("GET /api/backups", s.backupH.List)
	protect("POST /api/backups", s.backupH.Run)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "degraded"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"clients": s.hub.ClientCount(),
		"dropped": s.hub.Dropped(),
		"push":    s.forwarder != nil,
		"backups": s.backups.Enabled(),
	})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.loginLimit, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
