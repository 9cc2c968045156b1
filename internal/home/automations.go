package home

import (
	"fmt"
	"strings"

	"github.com/dukerupert/homedash/internal/model"
)

// SaveAutomation creates an automation for a device. A share of attempts,
// set by the failure rate, fails with ErrDeviceNotResponding and raises a
// danger alert instead. Nothing is retried.
func (h *Home) SaveAutomation(name, deviceID, action string) (model.Automation, error) {
	name, deviceID = strings.TrimSpace(name), strings.TrimSpace(deviceID)
	action = strings.TrimSpace(action)
	if name == "" || deviceID == "" {
		return model.Automation{}, invalid(KindMissingField, "Fill all fields")
	}

	var a model.Automation
	err := h.update(func() (bool, error) {
		if h.rng.Float64() < h.failureRate {
			h.observer.AutomationFailed()
			if err := h.notifyLocked(fmt.Sprintf("Automation '%s' failed — device not responding.", name), model.CategoryAutomation, model.SeverityDanger); err != nil {
				return true, err
			}
			return true, ErrDeviceNotResponding
		}

		a = model.Automation{ID: h.nextID(), Name: name, DeviceID: deviceID, Action: action}
		h.state.Automations = append(h.state.Automations, a)

		if err := h.store.SaveAutomations(h.state.Automations); err != nil {
			return true, fmt.Errorf("save automations: %w", err)
		}
		return true, h.notifyLocked(fmt.Sprintf("Automation '%s' created.", name), model.CategoryAutomation, model.SeverityInfo)
	})
	return a, err
}
