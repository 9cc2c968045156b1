package home

import (
	"errors"
	"testing"

	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/store"
)

func TestRegister(t *testing.T) {
	hs := newHarness(t)

	if err := hs.home.Navigate(model.ScreenRegister); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if err := hs.home.Register("Alice", "alice@example.com", "pw", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if got := hs.home.Snapshot().Screen; got != model.ScreenLogin {
		t.Errorf("screen = %q, want login", got)
	}
	st := hs.reload(t)
	if len(st.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(st.Users))
	}
	if st.Users[1] != (model.User{Name: "Alice", Email: "alice@example.com", Password: "pw"}) {
		t.Errorf("user = %+v", st.Users[1])
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name                    string
		user, email, pass, conf string
		want                    ErrorKind
	}{
		{"missing name", "", "a@example.com", "pw", "pw", KindMissingField},
		{"missing email", "A", "  ", "pw", "pw", KindMissingField},
		{"missing confirm", "A", "a@example.com", "pw", "", KindMissingField},
		{"mismatch", "A", "a@example.com", "pw", "px", KindPasswordMismatch},
		{"duplicate", "A", store.DemoUser.Email, "pw", "pw", KindDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t)
			err := hs.home.Register(tt.user, tt.email, tt.pass, tt.conf)
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %q, want %q (err %v)", got, tt.want, err)
			}
			if n := len(hs.reload(t).Users); n != 1 {
				t.Errorf("users = %d, want 1", n)
			}
		})
	}
}

func TestRegisterDuplicateDoesNotMutate(t *testing.T) {
	hs := newHarness(t)

	if err := hs.home.Register("Bob", "bob@example.com", "a", "a"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := hs.home.Register("Bobby", "bob@example.com", "b", "b")
	if KindOf(err) != KindDuplicateEmail {
		t.Fatalf("err = %v, want duplicate email", err)
	}

	users := hs.home.Snapshot().State.Users
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}
	if users[1].Name != "Bob" || users[1].Password != "a" {
		t.Errorf("existing user changed: %+v", users[1])
	}
}

func TestLoginSuccess(t *testing.T) {
	hs := newHarness(t)
	hs.login(t)

	snap := hs.home.Snapshot()
	if snap.Screen != model.ScreenApp || snap.Page != model.PageDashboard {
		t.Errorf("screen/page = %q/%q, want app/dashboard", snap.Screen, snap.Page)
	}
	if snap.State.ActiveEmail != store.DemoUser.Email {
		t.Errorf("active = %q", snap.State.ActiveEmail)
	}
	if st := hs.reload(t); st.ActiveEmail != store.DemoUser.Email {
		t.Errorf("persisted active = %q", st.ActiveEmail)
	}
	if hs.observer.loginSuccesses != 1 {
		t.Errorf("login successes = %d, want 1", hs.observer.loginSuccesses)
	}
}

func TestLoginFailureRaisesAlert(t *testing.T) {
	hs := newHarness(t)

	err := hs.home.Login(store.DemoUser.Email, "wrong")
	if KindOf(err) != KindInvalidCredentials {
		t.Fatalf("err = %v, want invalid credentials", err)
	}
	if err.Error() != "Invalid credentials." {
		t.Errorf("message = %q", err.Error())
	}
	if hs.home.FailedLogins() != 1 {
		t.Errorf("failed logins = %d, want 1", hs.home.FailedLogins())
	}

	notes := hs.reload(t).Notifications
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}
	n := notes[0]
	if n.Message != `Unauthorized login attempt for "admin@example.com"` {
		t.Errorf("message = %q", n.Message)
	}
	if n.Category != model.CategorySecurity || n.Severity != model.SeverityDanger {
		t.Errorf("category/severity = %q/%q", n.Category, n.Severity)
	}
}

func TestLoginIntrusionOnThirdFailure(t *testing.T) {
	hs := newHarness(t)

	// Distinct emails still count toward the same total
	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for i, email := range emails {
		hs.home.Login(email, "x")
		notes := hs.home.Snapshot().State.Notifications
		wantLen := i + 1
		if i == 2 {
			wantLen = 4
		}
		if len(notes) != wantLen {
			t.Fatalf("after failure %d: notifications = %d, want %d", i+1, len(notes), wantLen)
		}
	}

	notes := hs.home.Snapshot().State.Notifications
	last := notes[len(notes)-1]
	if last.Message != "Multiple failed login attempts — possible intrusion!" {
		t.Errorf("last message = %q", last.Message)
	}
	if last.Severity != model.SeverityDanger || last.Category != model.CategorySecurity {
		t.Errorf("last = %+v", last)
	}

	// A fourth failure raises both alerts again
	hs.home.Login("d@example.com", "x")
	if got := len(hs.home.Snapshot().State.Notifications); got != 6 {
		t.Errorf("notifications = %d, want 6", got)
	}
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	hs := newHarness(t)

	hs.home.Login("x@example.com", "x")
	hs.home.Login("x@example.com", "x")
	hs.login(t)
	if got := hs.home.FailedLogins(); got != 0 {
		t.Fatalf("failed logins = %d, want 0", got)
	}
	hs.home.Logout()

	hs.home.Login("x@example.com", "x")
	// Only one failure since the reset, so no intrusion alert
	for _, n := range hs.home.Snapshot().State.Notifications {
		if n.Message == "Multiple failed login attempts — possible intrusion!" {
			t.Fatal("unexpected intrusion alert")
		}
	}
}

func TestResetPassword(t *testing.T) {
	hs := newHarness(t)

	hs.home.Navigate(model.ScreenForgot)
	if err := hs.home.ResetPassword(store.DemoUser.Email, "new", "new"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := hs.home.Snapshot().Screen; got != model.ScreenLogin {
		t.Errorf("screen = %q, want login", got)
	}
	if got := hs.reload(t).Users[0].Password; got != "new" {
		t.Errorf("password = %q, want new", got)
	}
	if err := hs.home.Login(store.DemoUser.Email, "new"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestResetPasswordValidation(t *testing.T) {
	hs := newHarness(t)

	if KindOf(hs.home.ResetPassword("", "a", "a")) != KindMissingField {
		t.Error("expected missing field")
	}
	if KindOf(hs.home.ResetPassword(store.DemoUser.Email, "a", "b")) != KindPasswordMismatch {
		t.Error("expected password mismatch")
	}
	err := hs.home.ResetPassword("ghost@example.com", "a", "a")
	if KindOf(err) != KindNotFound || err.Error() != "Email not found." {
		t.Errorf("err = %v, want email not found", err)
	}
}

func TestLogout(t *testing.T) {
	hs := newHarness(t)
	hs.login(t)

	if err := hs.home.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	snap := hs.home.Snapshot()
	if snap.Screen != model.ScreenLogin || snap.State.ActiveEmail != "" {
		t.Errorf("after logout: screen %q active %q", snap.Screen, snap.State.ActiveEmail)
	}
	if st := hs.reload(t); st.ActiveEmail != "" {
		t.Errorf("persisted active = %q, want empty", st.ActiveEmail)
	}
}

func TestNavigate(t *testing.T) {
	hs := newHarness(t)

	for _, s := range []model.Screen{model.ScreenRegister, model.ScreenLogin, model.ScreenForgot, model.ScreenLogin} {
		if err := hs.home.Navigate(s); err != nil {
			t.Fatalf("navigate %s: %v", s, err)
		}
		if got := hs.home.Snapshot().Screen; got != s {
			t.Errorf("screen = %q, want %q", got, s)
		}
	}

	if err := hs.home.Navigate(model.ScreenApp); err == nil {
		t.Error("expected error navigating straight to app")
	}
}

func TestShowPage(t *testing.T) {
	hs := newHarness(t)

	if err := hs.home.ShowPage(model.PageDevices); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}

	hs.login(t)
	if err := hs.home.ShowPage(model.PageEnergy); err != nil {
		t.Fatalf("show page: %v", err)
	}
	if got := hs.home.Snapshot().Page; got != model.PageEnergy {
		t.Errorf("page = %q, want energy", got)
	}
	if err := hs.home.ShowPage("nowhere"); KindOf(err) != KindNotFound {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	hs := newHarness(t)

	if err := hs.home.UpdateProfileName("X"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}

	hs.login(t)
	if err := hs.home.UpdateProfileName("Admin"); err != nil {
		t.Fatalf("update name: %v", err)
	}
	if KindOf(hs.home.UpdateProfileName(" ")) != KindMissingField {
		t.Error("expected missing field for blank name")
	}
	if err := hs.home.UpdateProfilePassword("pw2", "pw2"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if KindOf(hs.home.UpdateProfilePassword("a", "b")) != KindPasswordMismatch {
		t.Error("expected password mismatch")
	}
	if KindOf(hs.home.UpdateProfilePassword("", "")) != KindMissingField {
		t.Error("expected missing field")
	}

	u := hs.reload(t).Users[0]
	if u.Name != "Admin" || u.Password != "pw2" {
		t.Errorf("user = %+v", u)
	}
	if active, _ := hs.home.ActiveUser(); active.Name != "Admin" {
		t.Errorf("active user name = %q", active.Name)
	}
}
