package home

import (
	"fmt"

	"github.com/dukerupert/homedash/internal/model"
)

// Notify appends an alert, keeps only the newest model.MaxNotifications and
// saves the log.
func (h *Home) Notify(message string, category model.Category, severity model.Severity) error {
	return h.update(func() (bool, error) {
		return true, h.notifyLocked(message, category, severity)
	})
}

func (h *Home) notifyLocked(message string, category model.Category, severity model.Severity) error {
	n := model.Notification{
		ID:        h.ids.New(),
		Message:   message,
		Category:  category,
		Severity:  severity,
		Icon:      severity.Icon(),
		Timestamp: h.clock.Now().Format(model.TimestampLayout),
	}

	list := append(h.state.Notifications, n)
	if len(list) > model.MaxNotifications {
		list = append([]model.Notification(nil), list[len(list)-model.MaxNotifications:]...)
	}
	h.state.Notifications = list

	h.observer.AlertRaised(n)
	h.logger.Debug("alert", "category", category, "severity", severity, "message", message)

	if err := h.store.SaveNotifications(h.state.Notifications); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// ClearAlerts empties the alert log.
func (h *Home) ClearAlerts() error {
	return h.update(func() (bool, error) {
		h.state.Notifications = nil
		if err := h.store.SaveNotifications(nil); err != nil {
			return true, fmt.Errorf("save notifications: %w", err)
		}
		return true, nil
	})
}

// MarkAllRead flags every alert as read.
func (h *Home) MarkAllRead() error {
	return h.update(func() (bool, error) {
		for i := range h.state.Notifications {
			h.state.Notifications[i].Read = true
		}
		if err := h.store.SaveNotifications(h.state.Notifications); err != nil {
			return true, fmt.Errorf("save notifications: %w", err)
		}
		return true, nil
	})
}
