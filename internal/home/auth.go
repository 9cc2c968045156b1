package home

import (
	"fmt"
	"strings"

	"github.com/dukerupert/homedash/internal/model"
)

// Navigate switches between the login, register and forgot-password forms.
// It has no effect on stored data and is ignored while a user is logged in.
func (h *Home) Navigate(screen model.Screen) error {
	switch screen {
	case model.ScreenLogin, model.ScreenRegister, model.ScreenForgot:
	default:
		return invalid(KindNotFound, fmt.Sprintf("Unknown screen %q.", screen))
	}
	return h.update(func() (bool, error) {
		if h.screen == model.ScreenApp {
			return false, nil
		}
		h.screen = screen
		return true, nil
	})
}

// ShowPage selects an app section.
func (h *Home) ShowPage(page model.Page) error {
	if !page.Valid() {
		return invalid(KindNotFound, fmt.Sprintf("Unknown page %q.", page))
	}
	return h.update(func() (bool, error) {
		if h.screen != model.ScreenApp {
			return false, ErrNoSession
		}
		h.page = page
		return true, nil
	})
}

// Register creates an account and returns to the login form.
func (h *Home) Register(name, email, pass, confirm string) error {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	pass, confirm = strings.TrimSpace(pass), strings.TrimSpace(confirm)

	if name == "" || email == "" || pass == "" || confirm == "" {
		return invalid(KindMissingField, "All fields are required.")
	}
	if pass != confirm {
		return invalid(KindPasswordMismatch, "Passwords do not match.")
	}

	return h.update(func() (bool, error) {
		if h.state.FindUser(email) >= 0 {
			return false, invalid(KindDuplicateEmail, "Email already registered.")
		}

		h.state.Users = append(h.state.Users, model.User{Name: name, Email: email, Password: pass})
		h.screen = model.ScreenLogin
		if err := h.store.SaveUsers(h.state.Users); err != nil {
			return true, fmt.Errorf("save users: %w", err)
		}
		h.logger.Info("user registered", "email", email)
		return true, nil
	})
}

// Login starts a session for an exact email and password match. Every
// failure raises a security alert; from the third consecutive failure on,
// regardless of which emails were tried, an intrusion alert follows it.
func (h *Home) Login(email, pass string) error {
	email, pass = strings.TrimSpace(email), strings.TrimSpace(pass)

	return h.update(func() (bool, error) {
		i := h.state.FindUser(email)
		if i < 0 || h.state.Users[i].Password != pass {
			h.failedLogins++
			h.observer.LoginFailed()
			h.logger.Warn("login failed", "email", email, "failures", h.failedLogins)

			if err := h.notifyLocked(fmt.Sprintf("Unauthorized login attempt for %q", email), model.CategorySecurity, model.SeverityDanger); err != nil {
				return true, err
			}
			if h.failedLogins >= IntrusionThreshold {
				if err := h.notifyLocked("Multiple failed login attempts — possible intrusion!", model.CategorySecurity, model.SeverityDanger); err != nil {
					return true, err
				}
			}
			return true, invalid(KindInvalidCredentials, "Invalid credentials.")
		}

		h.failedLogins = 0
		h.state.ActiveEmail = email
		h.screen = model.ScreenApp
		h.page = model.PageDashboard
		h.observer.LoginSucceeded()

		if err := h.store.SetActiveUser(email); err != nil {
			return true, fmt.Errorf("save active user: %w", err)
		}
		h.logger.Info("login", "email", email)
		return true, nil
	})
}

// ResetPassword overwrites the password of an existing account.
func (h *Home) ResetPassword(email, pass, confirm string) error {
	email = strings.TrimSpace(email)
	pass, confirm = strings.TrimSpace(pass), strings.TrimSpace(confirm)

	if email == "" || pass == "" || confirm == "" {
		return invalid(KindMissingField, "All fields required.")
	}
	if pass != confirm {
		return invalid(KindPasswordMismatch, "Passwords don't match.")
	}

	return h.update(func() (bool, error) {
		i := h.state.FindUser(email)
		if i < 0 {
			return false, invalid(KindNotFound, "Email not found.")
		}

		h.state.Users[i].Password = pass
		h.screen = model.ScreenLogin
		if err := h.store.SaveUsers(h.state.Users); err != nil {
			return true, fmt.Errorf("save users: %w", err)
		}
		return true, nil
	})
}

// Logout ends the session and returns to the login form.
func (h *Home) Logout() error {
	return h.update(func() (bool, error) {
		h.state.ActiveEmail = ""
		h.screen = model.ScreenLogin
		if err := h.store.ClearActiveUser(); err != nil {
			return true, fmt.Errorf("clear active user: %w", err)
		}
		return true, nil
	})
}

// ActiveUser returns the logged in user.
func (h *Home) ActiveUser() (model.User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.ActiveUser()
}

// UpdateProfileName renames the logged in user.
func (h *Home) UpdateProfileName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid(KindMissingField, "Name cannot be empty.")
	}

	return h.update(func() (bool, error) {
		i, err := h.activeIndex()
		if err != nil {
			return false, err
		}
		h.state.Users[i].Name = name
		if err := h.store.SaveUsers(h.state.Users); err != nil {
			return true, fmt.Errorf("save users: %w", err)
		}
		return true, nil
	})
}

// UpdateProfilePassword changes the logged in user's password.
func (h *Home) UpdateProfilePassword(pass, confirm string) error {
	pass, confirm = strings.TrimSpace(pass), strings.TrimSpace(confirm)
	if pass == "" || confirm == "" {
		return invalid(KindMissingField, "Enter both fields.")
	}
	if pass != confirm {
		return invalid(KindPasswordMismatch, "Passwords do not match.")
	}

	return h.update(func() (bool, error) {
		i, err := h.activeIndex()
		if err != nil {
			return false, err
		}
		h.state.Users[i].Password = pass
		if err := h.store.SaveUsers(h.state.Users); err != nil {
			return true, fmt.Errorf("save users: %w", err)
		}
		return true, nil
	})
}

func (h *Home) activeIndex() (int, error) {
	if h.state.ActiveEmail == "" {
		return -1, ErrNoSession
	}
	i := h.state.FindUser(h.state.ActiveEmail)
	if i < 0 {
		return -1, ErrNoSession
	}
	return i, nil
}
