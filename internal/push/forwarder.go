package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/dukerupert/homedash/internal/model"
)

// Sender delivers one payload to one subscription. *Service satisfies it.
type Sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload Payload, urgency webpush.Urgency) error
}

// Subscriptions lists delivery targets and forgets expired ones.
// *store.PushStore satisfies it.
type Subscriptions interface {
	ListAll() ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

const queueSize = 32

// Forwarder relays warning and danger alerts to every subscribed browser.
// It is a home.Observer: AlertRaised only enqueues, delivery happens on the
// goroutine started by Start. Alerts raised while the queue is full are
// dropped.
type Forwarder struct {
	sender  Sender
	subs    Subscriptions
	queue   chan model.Notification
	dropped atomic.Int64
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewForwarder(sender Sender, subs Subscriptions, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		sender: sender,
		subs:   subs,
		queue:  make(chan model.Notification, queueSize),
		logger: logger,
	}
}

func (f *Forwarder) AlertRaised(n model.Notification) {
	if n.Severity == model.SeverityInfo {
		return
	}
	select {
	case f.queue <- n:
	default:
		f.dropped.Add(1)
	}
}

func (f *Forwarder) LoginFailed()      {}
func (f *Forwarder) LoginSucceeded()   {}
func (f *Forwarder) AutomationFailed() {}

// Dropped returns how many alerts were skipped because the queue was full.
func (f *Forwarder) Dropped() int64 {
	return f.dropped.Load()
}

// Start begins delivering queued alerts until ctx is cancelled or Stop is
// called.
func (f *Forwarder) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done != nil {
		return fmt.Errorf("push forwarder already started")
	}

	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-f.queue:
				f.Deliver(ctx, n)
			}
		}
	}(f.done)
	return nil
}

// Stop halts delivery and waits for the alert in flight.
func (f *Forwarder) Stop() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Deliver sends n to every subscription and returns how many accepted it.
// Subscriptions the push service reports as gone are deleted.
func (f *Forwarder) Deliver(ctx context.Context, n model.Notification) int {
	subs, err := f.subs.ListAll()
	if err != nil {
		f.logger.Error("list push subscriptions", "error", err)
		return 0
	}

	payload := PayloadFor(n)
	urgency := webpush.UrgencyNormal
	if n.Severity == model.SeverityDanger {
		urgency = webpush.UrgencyHigh
	}

	sent := 0
	for i := range subs {
		sub := &subs[i]
		err := f.sender.Send(ctx, sub, payload, urgency)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrExpired):
			f.logger.Info("push subscription expired", "id", sub.ID, "email", sub.Email)
			if err := f.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
				f.logger.Error("delete expired push subscription", "id", sub.ID, "error", err)
			}
		default:
			f.logger.Warn("push send failed", "id", sub.ID, "error", err)
		}
	}
	f.logger.Debug("alert pushed", "alert", n.ID, "sent", sent, "subscriptions", len(subs))
	return sent
}

// PayloadFor builds the notification shown by the browser for an alert.
func PayloadFor(n model.Notification) Payload {
	return Payload{
		Title: strings.TrimSpace(n.Icon + " " + strings.ToUpper(string(n.Category)) + " alert"),
		Body:  n.Message,
		URL:   "/",
		Tag:   n.ID,
	}
}
