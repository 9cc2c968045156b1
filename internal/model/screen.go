package model

// Screen is the top-level view: one of the auth forms or the app itself.
type Screen string

const (
	ScreenLogin    Screen = "login"
	ScreenRegister Screen = "register"
	ScreenForgot   Screen = "forgot"
	ScreenApp      Screen = "app"
)

// Page is a section inside the app screen.
type Page string

const (
	PageDashboard   Page = "dashboard"
	PageDevices     Page = "devices"
	PageAutomations Page = "automations"
	PageEnergy      Page = "energy"
	PageAlerts      Page = "alerts"
	PageProfile     Page = "profile"
)

// Pages lists the app sections in navigation order.
var Pages = []Page{PageDashboard, PageDevices, PageAutomations, PageEnergy, PageAlerts, PageProfile}

func (p Page) Valid() bool {
	for _, v := range Pages {
		if v == p {
			return true
		}
	}
	return false
}

// Snapshot is a copy of the state together with the current navigation.
type Snapshot struct {
	State  State
	Screen Screen
	Page   Page
}
