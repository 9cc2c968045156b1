package home

import (
	"fmt"
	"strings"

	"github.com/dukerupert/homedash/internal/model"
)

// Energy draw range, in watts, assigned to new devices.
const (
	MinDeviceEnergy = 30
	MaxDeviceEnergy = 120
)

// AddDevice registers a switched-off device with a random energy draw.
func (h *Home) AddDevice(name string, typ model.DeviceType) (model.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Device{}, invalid(KindMissingField, "Enter device name")
	}
	if !typ.Valid() {
		return model.Device{}, invalid(KindInvalidType, fmt.Sprintf("Unknown device type %q.", typ))
	}

	var d model.Device
	err := h.update(func() (bool, error) {
		d = model.Device{
			ID:     h.nextID(),
			Name:   name,
			Type:   typ,
			Energy: Between(h.rng, MinDeviceEnergy, MaxDeviceEnergy),
		}
		h.state.Devices = append(h.state.Devices, d)

		if err := h.store.SaveDevices(h.state.Devices); err != nil {
			return true, fmt.Errorf("save devices: %w", err)
		}
		return true, h.notifyLocked(fmt.Sprintf("%s added to devices.", name), model.CategorySystem, model.SeverityInfo)
	})
	return d, err
}

// ToggleDevice flips a device between on and off.
func (h *Home) ToggleDevice(id int64) (model.Device, error) {
	var d model.Device
	err := h.update(func() (bool, error) {
		i := h.state.FindDevice(id)
		if i < 0 {
			return false, invalid(KindNotFound, "Device not found.")
		}

		h.state.Devices[i].Status = !h.state.Devices[i].Status
		d = h.state.Devices[i]

		if err := h.notifyLocked(fmt.Sprintf("%s turned %s", d.Name, d.StatusLabel()), model.CategorySystem, model.SeverityInfo); err != nil {
			return true, err
		}
		if err := h.store.SaveDevices(h.state.Devices); err != nil {
			return true, fmt.Errorf("save devices: %w", err)
		}
		return true, nil
	})
	return d, err
}

// RemoveDevice deletes a device. Automations that reference it are kept and
// render with a removed-device placeholder.
func (h *Home) RemoveDevice(id int64) error {
	return h.update(func() (bool, error) {
		i := h.state.FindDevice(id)
		if i < 0 {
			return false, invalid(KindNotFound, "Device not found.")
		}

		name := h.state.Devices[i].Name
		h.state.Devices = append(h.state.Devices[:i:i], h.state.Devices[i+1:]...)

		if err := h.store.SaveDevices(h.state.Devices); err != nil {
			return true, fmt.Errorf("save devices: %w", err)
		}
		return true, h.notifyLocked(fmt.Sprintf("%s removed from devices.", name), model.CategorySystem, model.SeverityInfo)
	})
}
