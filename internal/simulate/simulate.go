// Package simulate raises random security and door alerts in the background,
// standing in for real sensors.
package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/homedash/internal/model"
)

// Notifier receives the simulated alerts. *home.Home satisfies it.
type Notifier interface {
	Notify(message string, category model.Category, severity model.Severity) error
}

type Rand interface {
	Float64() float64
}

// Simulator fires its alert with Probability on every period.
type Simulator struct {
	Name        string
	Every       time.Duration
	Probability float64
	Message     string
	Category    model.Category
	Severity    model.Severity
}

func Motion() Simulator {
	return Simulator{
		Name:        "motion",
		Every:       7 * time.Second,
		Probability: 0.05,
		Message:     "Motion detected at Front Door Camera",
		Category:    model.CategorySecurity,
		Severity:    model.SeverityWarning,
	}
}

func Door() Simulator {
	return Simulator{
		Name:        "door",
		Every:       9 * time.Second,
		Probability: 0.03,
		Message:     "Main Door opened",
		Category:    model.CategoryDoor,
		Severity:    model.SeverityInfo,
	}
}

// Defaults returns the motion and door simulators.
func Defaults() []Simulator {
	return []Simulator{Motion(), Door()}
}

// Scheduler runs each simulator on its own cron schedule.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	notifier Notifier
	rng      Rand
	sims     []Simulator
	logger   *slog.Logger
}

func NewScheduler(n Notifier, rng Rand, sims []Simulator, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		notifier: n,
		rng:      rng,
		sims:     sims,
		logger:   logger,
	}
}

// Start schedules every simulator and returns. The jobs stop when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("simulators already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	for _, sim := range s.sims {
		if sim.Every <= 0 {
			return fmt.Errorf("simulator %s: period must be positive", sim.Name)
		}
		if _, err := c.AddFunc("@every "+sim.Every.String(), func() { s.Tick(sim) }); err != nil {
			return fmt.Errorf("schedule %s: %w", sim.Name, err)
		}
		s.logger.Info("simulator scheduled", "name", sim.Name, "every", sim.Every, "probability", sim.Probability)
	}
	c.Start()
	s.cron = c

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Tick rolls once for sim and raises its alert on success. It reports
// whether an alert was raised.
func (s *Scheduler) Tick(sim Simulator) bool {
	if s.rng.Float64() >= sim.Probability {
		return false
	}
	if err := s.notifier.Notify(sim.Message, sim.Category, sim.Severity); err != nil {
		s.logger.Error("simulated alert", "name", sim.Name, "error", err)
		return false
	}
	s.logger.Debug("simulated alert", "name", sim.Name)
	return true
}
