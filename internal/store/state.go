package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukerupert/homedash/internal/model"
)

// Storage keys, shared with the original browser dashboard.
const (
	KeyUsers         = "sh_users"
	KeyDevices       = "sh_devices"
	KeyAutomations   = "sh_automations"
	KeyNotifications = "sh_notifications"
	KeyActiveUser    = "sh_active_user"
	KeyTheme         = "sh_theme"
)

// ErrCorrupt is returned by Load when a stored collection cannot be decoded.
var ErrCorrupt = errors.New("corrupt stored state")

// DemoUser is seeded when no accounts exist.
var DemoUser = model.User{Name: "Demo User", Email: "admin@example.com", Password: "1234"}

// StateStore loads and saves the dashboard collections as JSON documents in
// the kv table. Saves are independent; there is no transaction spanning keys.
type StateStore struct {
	kv *KVStore
}

func NewStateStore(kv *KVStore) *StateStore {
	return &StateStore{kv: kv}
}

// Load reads every key. Missing keys load as empty. When no users are
// stored the demo account is created and saved.
func (s *StateStore) Load() (*model.State, error) {
	st := &model.State{Theme: model.ThemeLight}

	if err := s.decode(KeyUsers, &st.Users); err != nil {
		return nil, err
	}
	if err := s.decode(KeyDevices, &st.Devices); err != nil {
		return nil, err
	}
	if err := s.decode(KeyAutomations, &st.Automations); err != nil {
		return nil, err
	}
	if err := s.decode(KeyNotifications, &st.Notifications); err != nil {
		return nil, err
	}

	if len(st.Users) == 0 {
		st.Users = append(st.Users, DemoUser)
		if err := s.SaveUsers(st.Users); err != nil {
			return nil, fmt.Errorf("seed demo user: %w", err)
		}
	}

	email, ok, err := s.kv.Get(KeyActiveUser)
	if err != nil {
		return nil, err
	}
	if ok && st.FindUser(email) >= 0 {
		st.ActiveEmail = email
	}

	theme, err := s.Theme()
	if err != nil {
		return nil, err
	}
	st.Theme = theme

	return st, nil
}

func (s *StateStore) decode(key string, v any) error {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: key %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func (s *StateStore) encode(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.kv.Set(key, string(data))
}

func (s *StateStore) SaveUsers(users []model.User) error {
	return s.encode(KeyUsers, nonNil(users))
}

func (s *StateStore) SaveDevices(devices []model.Device) error {
	return s.encode(KeyDevices, nonNil(devices))
}

func (s *StateStore) SaveAutomations(automations []model.Automation) error {
	return s.encode(KeyAutomations, nonNil(automations))
}

func (s *StateStore) SaveNotifications(notifications []model.Notification) error {
	return s.encode(KeyNotifications, nonNil(notifications))
}

// SetActiveUser records the logged in user's email.
func (s *StateStore) SetActiveUser(email string) error {
	return s.kv.Set(KeyActiveUser, email)
}

func (s *StateStore) ClearActiveUser() error {
	return s.kv.Delete(KeyActiveUser)
}

// Theme returns the stored theme. Anything other than "dark" is light.
func (s *StateStore) Theme() (model.Theme, error) {
	v, _, err := s.kv.Get(KeyTheme)
	if err != nil {
		return "", err
	}
	if model.Theme(v) == model.ThemeDark {
		return model.ThemeDark, nil
	}
	return model.ThemeLight, nil
}

func (s *StateStore) SetTheme(theme model.Theme) error {
	return s.kv.Set(KeyTheme, string(theme))
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
