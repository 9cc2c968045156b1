// Package view projects the dashboard state into a view-model. Render is a
// pure function; the HTML page, the JSON API and the terminal UI all draw
// from its output.
package view

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dukerupert/homedash/internal/chart"
	"github.com/dukerupert/homedash/internal/model"
)

// RemovedDevice stands in for an automation's device when it no longer exists.
const RemovedDevice = "(Device Removed)"

type DeviceCard struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	On          bool   `json:"on"`
	ToggleLabel string `json:"toggle_label"`
}

type DeviceOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type AutomationRow struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	DeviceName string `json:"device_name"`
	Action     string `json:"action"`
	Text       string `json:"text"`
}

type EnergyLine struct {
	Name  string `json:"name"`
	Watts int    `json:"watts"`
	Text  string `json:"text"`
}

type AlertItem struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Severity  string `json:"severity"`
	Icon      string `json:"icon"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ViewModel struct {
	Screen        model.Screen    `json:"screen"`
	Page          model.Page      `json:"page"`
	Theme         model.Theme     `json:"theme"`
	UserName      string          `json:"user_name,omitempty"`
	LoggedIn      bool            `json:"logged_in"`
	DeviceCount   int             `json:"device_count"`
	AlertCount    int             `json:"alert_count"`
	UnreadCount   int             `json:"unread_count"`
	TotalEnergy   int             `json:"total_energy"`
	Devices       []DeviceCard    `json:"devices"`
	DeviceOptions []DeviceOption  `json:"device_options"`
	Automations   []AutomationRow `json:"automations"`
	Energy        []EnergyLine    `json:"energy"`
	Alerts        []AlertItem     `json:"alerts"`
	Profile       *Profile        `json:"profile,omitempty"`
	Charts        chart.Charts    `json:"charts"`
}

// Render builds the complete view-model for a snapshot. Nothing is reused
// between calls.
func Render(snap model.Snapshot, charts chart.Charts) ViewModel {
	st := snap.State
	vm := ViewModel{
		Screen:      snap.Screen,
		Page:        snap.Page,
		Theme:       st.Theme,
		DeviceCount: len(st.Devices),
		AlertCount:  len(st.Notifications),
		TotalEnergy: chart.TotalEnergy(st.Devices),
		Charts:      charts,
	}
	if vm.Theme == "" {
		vm.Theme = model.ThemeLight
	}

	if u, ok := st.ActiveUser(); ok {
		vm.LoggedIn = true
		vm.UserName = u.Name
		vm.Profile = &Profile{Name: u.Name, Email: u.Email}
	}

	vm.Devices = DeviceCards(st.Devices)
	vm.DeviceOptions = DeviceOptions(st.Devices)
	vm.Automations = AutomationRows(st.Automations, st.Devices)
	vm.Energy = EnergyLines(st.Devices)
	vm.Alerts = AlertFeed(st.Notifications)
	for _, n := range st.Notifications {
		if !n.Read {
			vm.UnreadCount++
		}
	}
	return vm
}

func DeviceCards(devices []model.Device) []DeviceCard {
	cards := make([]DeviceCard, 0, len(devices))
	for _, d := range devices {
		label := "Turn ON"
		if d.Status {
			label = "Turn OFF"
		}
		cards = append(cards, DeviceCard{
			ID:          d.ID,
			Name:        d.Name,
			Type:        string(d.Type),
			Status:      d.StatusLabel(),
			On:          d.Status,
			ToggleLabel: label,
		})
	}
	return cards
}

// DeviceOptions feeds the device picker on the automation form.
func DeviceOptions(devices []model.Device) []DeviceOption {
	opts := make([]DeviceOption, 0, len(devices))
	for _, d := range devices {
		opts = append(opts, DeviceOption{Value: strconv.FormatInt(d.ID, 10), Label: d.Name})
	}
	return opts
}

// AutomationRows resolves each automation's device by id. Missing devices
// render as RemovedDevice.
func AutomationRows(automations []model.Automation, devices []model.Device) []AutomationRow {
	names := make(map[string]string, len(devices))
	for _, d := range devices {
		names[strconv.FormatInt(d.ID, 10)] = d.Name
	}

	rows := make([]AutomationRow, 0, len(automations))
	for _, a := range automations {
		name, ok := names[strings.TrimSpace(a.DeviceID)]
		if !ok {
			name = RemovedDevice
		}
		action := strings.ToUpper(a.Action)
		rows = append(rows, AutomationRow{
			ID:         a.ID,
			Name:       a.Name,
			DeviceName: name,
			Action:     action,
			Text:       fmt.Sprintf("%s → %s (%s)", a.Name, name, action),
		})
	}
	return rows
}

func EnergyLines(devices []model.Device) []EnergyLine {
	lines := make([]EnergyLine, 0, len(devices))
	for _, d := range devices {
		lines = append(lines, EnergyLine{Name: d.Name, Watts: d.Energy, Text: fmt.Sprintf("%s: %dW", d.Name, d.Energy)})
	}
	return lines
}

// AlertFeed lists alerts newest first.
func AlertFeed(notifications []model.Notification) []AlertItem {
	items := make([]AlertItem, 0, len(notifications))
	for _, n := range slices.Backward(notifications) {
		items = append(items, AlertItem{
			ID:        n.ID,
			Category:  strings.ToUpper(string(n.Category)),
			Severity:  string(n.Severity),
			Icon:      n.Icon,
			Message:   n.Message,
			Timestamp: n.Timestamp,
			Read:      n.Read,
		})
	}
	return items
}

// Source is anything that can hand out a state snapshot.
type Source interface {
	Snapshot() model.Snapshot
}

// Current renders src with freshly built charts.
func Current(src Source, rng chart.Rand) ViewModel {
	snap := src.Snapshot()
	return Render(snap, chart.Build(snap.State.Devices, rng))
}
