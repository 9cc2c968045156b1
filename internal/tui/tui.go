// Package tui is a terminal rendition of the dashboard. It drives the same
// home.Home as the HTTP server and draws from the same view-model.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dukerupert/homedash/internal/chart"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/view"
)

const refreshInterval = time.Second

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("170")).
			Bold(true).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	onStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	severityStyles = map[string]lipgloss.Style{
		string(model.SeverityInfo):    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		string(model.SeverityWarning): lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		string(model.SeverityDanger):  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Dashboard is the subset of home.Home the terminal UI drives.
type Dashboard interface {
	view.Source
	Login(email, pass string) error
	Logout() error
	ShowPage(page model.Page) error
	ToggleDevice(id int64) (model.Device, error)
	MarkAllRead() error
	ClearAlerts() error
	ToggleTheme() (model.Theme, error)
}

type step int

const (
	stepEmail step = iota
	stepPassword
	stepApp
)

type refreshMsg struct{}

type Model struct {
	dash     Dashboard
	rng      chart.Rand
	vm       view.ViewModel
	step     step
	email    string
	input    string
	cursor   int
	message  string
	quitting bool
}

func New(dash Dashboard, rng chart.Rand) Model {
	m := Model{dash: dash, rng: rng}
	m.reload()
	if m.vm.LoggedIn {
		m.step = stepApp
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *Model) reload() {
	m.vm = view.Current(m.dash, m.rng)
	if m.cursor >= len(m.vm.Devices) {
		m.cursor = max(len(m.vm.Devices)-1, 0)
	}
}

func (m *Model) fail(err error) {
	if err != nil {
		m.message = errorStyle.Render("✗ " + err.Error())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.reload()
		if !m.vm.LoggedIn && m.step == stepApp {
			m.step = stepEmail
		}
		return m, tick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.step == stepApp {
			return m.updateApp(msg)
		}
		return m.updateLogin(msg)
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	case tea.KeyEnter:
		if m.input == "" {
			return m, nil
		}
		if m.step == stepEmail {
			m.email, m.input = m.input, ""
			m.step = stepPassword
			return m, nil
		}

		err := m.dash.Login(m.email, m.input)
		m.input = ""
		if err != nil {
			m.fail(err)
			m.step = stepEmail
		} else {
			m.message = ""
			m.step = stepApp
		}
		m.reload()

	case tea.KeyRunes, tea.KeySpace:
		m.input += msg.String()
	}
	return m, nil
}

func (m Model) updateApp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "tab", "right", "l":
		m.fail(m.dash.ShowPage(m.shiftPage(1)))

	case "shift+tab", "left", "h":
		m.fail(m.dash.ShowPage(m.shiftPage(-1)))

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.vm.Devices)-1 {
			m.cursor++
		}

	case "enter", " ":
		if m.vm.Page == model.PageDevices && len(m.vm.Devices) > 0 {
			_, err := m.dash.ToggleDevice(m.vm.Devices[m.cursor].ID)
			m.fail(err)
		}

	case "r":
		m.fail(m.dash.MarkAllRead())

	case "c":
		m.fail(m.dash.ClearAlerts())

	case "t":
		_, err := m.dash.ToggleTheme()
		m.fail(err)

	case "o":
		m.fail(m.dash.Logout())
		m.step = stepEmail
	}
	m.reload()
	return m, nil
}

func (m Model) shiftPage(delta int) model.Page {
	i := slices.Index(model.Pages, m.vm.Page)
	n := len(model.Pages)
	return model.Pages[((i+delta)%n+n)%n]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("🏠 Smart Home Dashboard"))
	s.WriteString("\n")

	switch m.step {
	case stepEmail:
		s.WriteString(promptStyle.Render("Email:") + "\n")
		s.WriteString(inputStyle.Render("> "+m.input) + "\n")
	case stepPassword:
		s.WriteString(promptStyle.Render("Password for "+m.email+":") + "\n")
		s.WriteString(inputStyle.Render("> "+strings.Repeat("•", len(m.input))) + "\n")
	case stepApp:
		m.viewApp(&s)
	}

	if m.message != "" {
		s.WriteString("\n" + m.message + "\n")
	}
	return s.String()
}

func (m Model) viewApp(s *strings.Builder) {
	vm := m.vm
	fmt.Fprintf(s, "Welcome, %s  (theme: %s, unread: %d)\n\n", vm.UserName, vm.Theme, vm.UnreadCount)

	var tabs []string
	for _, p := range model.Pages {
		if p == vm.Page {
			tabs = append(tabs, activeTabStyle.Render(string(p)))
		} else {
			tabs = append(tabs, tabStyle.Render(string(p)))
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	switch vm.Page {
	case model.PageDashboard:
		fmt.Fprintf(s, "Devices: %d   Alerts: %d   Total energy: %dW\n\n", vm.DeviceCount, vm.AlertCount, vm.TotalEnergy)
		for i, label := range vm.Charts.Bar.Labels {
			v := vm.Charts.Bar.Values[i]
			fmt.Fprintf(s, "%-16s %s %dW\n", label, strings.Repeat("█", v/10), v)
		}

	case model.PageDevices:
		if len(vm.Devices) == 0 {
			s.WriteString(normalStyle.Render("No devices yet.") + "\n")
		}
		for i, d := range vm.Devices {
			status := d.Status
			if d.On {
				status = onStyle.Render(status)
			}
			line := fmt.Sprintf("%s (%s) %s", d.Name, d.Type, status)
			if i == m.cursor {
				s.WriteString(selectedStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString(normalStyle.Render(line) + "\n")
			}
		}

	case model.PageAutomations:
		for _, a := range vm.Automations {
			s.WriteString(normalStyle.Render(a.Text) + "\n")
		}

	case model.PageEnergy:
		for _, e := range vm.Energy {
			s.WriteString(normalStyle.Render(e.Text) + "\n")
		}
		fmt.Fprintf(s, "\nTotal: %dW\n", vm.TotalEnergy)

	case model.PageAlerts:
		if len(vm.Alerts) == 0 {
			s.WriteString(normalStyle.Render("No alerts.") + "\n")
		}
		for _, a := range vm.Alerts {
			line := fmt.Sprintf("%s %s %s  %s", a.Icon, a.Category, a.Message, a.Timestamp)
			if st, ok := severityStyles[a.Severity]; ok && !a.Read {
				line = st.Render(line)
			}
			s.WriteString(line + "\n")
		}

	case model.PageProfile:
		if vm.Profile != nil {
			fmt.Fprintf(s, "Name:  %s\nEmail: %s\n", vm.Profile.Name, vm.Profile.Email)
		}
	}

	s.WriteString("\n" + helpStyle.Render("tab/←/→ page · ↑/↓ select · enter toggle · r read · c clear · t theme · o logout · q quit") + "\n")
}
