package home

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/homedash/internal/model"
)

// Clock abstracts time so tests are deterministic.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator produces alert ids.
type IDGenerator interface {
	New() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Rand is the source of every simulated random outcome.
type Rand interface {
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// GlobalRand uses the process-wide math/rand/v2 source, which is safe for
// concurrent use.
type GlobalRand struct{}

func (GlobalRand) Float64() float64 { return rand.Float64() }
func (GlobalRand) IntN(n int) int   { return rand.IntN(n) }

// Between returns a uniform integer in [min, max).
func Between(r Rand, min, max int) int {
	return min + r.IntN(max-min)
}

// Persister saves the collections and scalars of the dashboard state.
// *store.StateStore satisfies it.
type Persister interface {
	SaveUsers([]model.User) error
	SaveDevices([]model.Device) error
	SaveAutomations([]model.Automation) error
	SaveNotifications([]model.Notification) error
	SetActiveUser(email string) error
	ClearActiveUser() error
	SetTheme(model.Theme) error
}

// Observer is told about notable events, typically to feed metrics.
type Observer interface {
	// AlertRaised runs under the home's lock and must not block or call
	// back into the home.
	AlertRaised(n model.Notification)
	LoginFailed()
	LoginSucceeded()
	AutomationFailed()
}

type nopObserver struct{}

func (nopObserver) AlertRaised(model.Notification) {}
func (nopObserver) LoginFailed()                   {}
func (nopObserver) LoginSucceeded()                {}
func (nopObserver) AutomationFailed()              {}

// Observers fans every event out to each of obs in order.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) AlertRaised(n model.Notification) {
	for _, o := range m {
		o.AlertRaised(n)
	}
}

func (m multiObserver) LoginFailed() {
	for _, o := range m {
		o.LoginFailed()
	}
}

func (m multiObserver) LoginSucceeded() {
	for _, o := range m {
		o.LoginSucceeded()
	}
}

func (m multiObserver) AutomationFailed() {
	for _, o := range m {
		o.AutomationFailed()
	}
}
