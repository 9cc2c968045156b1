// Package home owns the dashboard state and every operation that changes it:
// accounts and the login session, devices, automations, alerts and theme.
//
// All operations are serialised on one mutex so each runs to completion
// before the next starts, whether it comes from an HTTP request, the
// terminal UI or a background simulator. After any change the refresh hook
// is called outside the lock so views can re-render.
package home

import (
	"log/slog"
	"sync"

	"github.com/dukerupert/homedash/internal/model"
)

// DefaultAutomationFailureRate is the chance that creating an automation
// fails with ErrDeviceNotResponding.
const DefaultAutomationFailureRate = 0.2

// IntrusionThreshold is the failed login count at which an intrusion alert
// accompanies each further failure.
const IntrusionThreshold = 3

type Home struct {
	mu    sync.Mutex
	state *model.State
	store Persister

	screen       model.Screen
	page         model.Page
	failedLogins int
	lastID       int64

	clock       Clock
	ids         IDGenerator
	rng         Rand
	observer    Observer
	refresh     func()
	failureRate float64
	logger      *slog.Logger
}

type Option func(*Home)

func WithClock(c Clock) Option             { return func(h *Home) { h.clock = c } }
func WithIDGenerator(g IDGenerator) Option { return func(h *Home) { h.ids = g } }
func WithRand(r Rand) Option               { return func(h *Home) { h.rng = r } }
func WithObserver(o Observer) Option       { return func(h *Home) { h.observer = o } }
func WithLogger(l *slog.Logger) Option     { return func(h *Home) { h.logger = l } }

// WithRefresh sets the hook called after every state change.
func WithRefresh(fn func()) Option { return func(h *Home) { h.refresh = fn } }

// WithAutomationFailureRate overrides DefaultAutomationFailureRate.
func WithAutomationFailureRate(p float64) Option {
	return func(h *Home) { h.failureRate = p }
}

// New wraps a loaded state. The initial screen is the app when a user is
// already logged in, otherwise the login form.
func New(state *model.State, store Persister, opts ...Option) *Home {
	h := &Home{
		state:       state,
		store:       store,
		screen:      model.ScreenLogin,
		page:        model.PageDashboard,
		clock:       RealClock{},
		ids:         UUIDGenerator{},
		rng:         GlobalRand{},
		observer:    nopObserver{},
		refresh:     func() {},
		failureRate: DefaultAutomationFailureRate,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	if _, ok := state.ActiveUser(); ok {
		h.screen = model.ScreenApp
	}
	for _, d := range state.Devices {
		h.lastID = max(h.lastID, d.ID)
	}
	for _, a := range state.Automations {
		h.lastID = max(h.lastID, a.ID)
	}
	return h
}

// Snapshot returns a copy of the current state and navigation.
func (h *Home) Snapshot() model.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return model.Snapshot{
		State:  h.state.Clone(),
		Screen: h.screen,
		Page:   h.page,
	}
}

// Rand returns the random source, shared with the chart builder.
func (h *Home) Rand() Rand { return h.rng }

// FailedLogins returns the failed login count since startup or the last
// successful login.
func (h *Home) FailedLogins() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failedLogins
}

// nextID returns a millisecond timestamp, bumped past the last issued id so
// ids stay unique within the same millisecond.
func (h *Home) nextID() int64 {
	id := h.clock.Now().UnixMilli()
	if id <= h.lastID {
		id = h.lastID + 1
	}
	h.lastID = id
	return id
}

// update runs fn under the lock and calls the refresh hook afterwards when
// fn reports a change, even if it also returned an error.
func (h *Home) update(fn func() (changed bool, err error)) error {
	h.mu.Lock()
	changed, err := fn()
	h.mu.Unlock()

	if changed {
		h.refresh()
	}
	return err
}
