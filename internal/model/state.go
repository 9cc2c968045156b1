package model

// State is the full persisted dashboard state.
type State struct {
	Users         []User
	Devices       []Device
	Automations   []Automation
	Notifications []Notification
	ActiveEmail   string
	Theme         Theme
}

// FindUser returns the index of the user with email, or -1.
func (s *State) FindUser(email string) int {
	for i, u := range s.Users {
		if u.Email == email {
			return i
		}
	}
	return -1
}

// FindDevice returns the index of the device with id, or -1.
func (s *State) FindDevice(id int64) int {
	for i, d := range s.Devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// ActiveUser returns the logged in user, if any.
func (s *State) ActiveUser() (User, bool) {
	if s.ActiveEmail == "" {
		return User{}, false
	}
	i := s.FindUser(s.ActiveEmail)
	if i < 0 {
		return User{}, false
	}
	return s.Users[i], true
}

// Clone returns a deep copy of s.
func (s *State) Clone() State {
	return State{
		Users:         append([]User(nil), s.Users...),
		Devices:       append([]Device(nil), s.Devices...),
		Automations:   append([]Automation(nil), s.Automations...),
		Notifications: append([]Notification(nil), s.Notifications...),
		ActiveEmail:   s.ActiveEmail,
		Theme:         s.Theme,
	}
}
