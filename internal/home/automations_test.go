package home

import (
	"errors"
	"strconv"
	"testing"

	"github.com/dukerupert/homedash/internal/model"
)

func TestSaveAutomation(t *testing.T) {
	hs := newHarness(t)
	d, _ := hs.home.AddDevice("Fan", model.DeviceFan)
	hs.rng.QueueFloats(0.2) // at the threshold counts as success

	a, err := hs.home.SaveAutomation("Cool down", strconv.FormatInt(d.ID, 10), "on")
	if err != nil {
		t.Fatalf("save automation: %v", err)
	}
	if a.Name != "Cool down" || a.Action != "on" || a.DeviceID != strconv.FormatInt(d.ID, 10) {
		t.Errorf("automation = %+v", a)
	}
	if a.ID == d.ID {
		t.Error("automation id collides with device id")
	}

	st := hs.reload(t)
	if len(st.Automations) != 1 || st.Automations[0] != a {
		t.Errorf("stored = %+v", st.Automations)
	}
	last := st.Notifications[len(st.Notifications)-1]
	if last.Message != "Automation 'Cool down' created." || last.Category != model.CategoryAutomation || last.Severity != model.SeverityInfo {
		t.Errorf("notification = %+v", last)
	}
}

func TestSaveAutomationSimulatedFailure(t *testing.T) {
	hs := newHarness(t)
	hs.rng.QueueFloats(0.1)

	_, err := hs.home.SaveAutomation("Night", "1", "off")
	if !errors.Is(err, ErrDeviceNotResponding) {
		t.Fatalf("err = %v, want ErrDeviceNotResponding", err)
	}

	st := hs.reload(t)
	if len(st.Automations) != 0 {
		t.Errorf("automations = %d, want 0", len(st.Automations))
	}
	if len(st.Notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(st.Notifications))
	}
	n := st.Notifications[0]
	if n.Message != "Automation 'Night' failed — device not responding." {
		t.Errorf("message = %q", n.Message)
	}
	if n.Severity != model.SeverityDanger || n.Category != model.CategoryAutomation {
		t.Errorf("notification = %+v", n)
	}
	if hs.observer.automationErrors != 1 {
		t.Errorf("automation failures = %d, want 1", hs.observer.automationErrors)
	}
}

func TestSaveAutomationMissingFieldIgnoresRandomness(t *testing.T) {
	for _, roll := range []float64{0.0, 0.99} {
		hs := newHarness(t)
		hs.rng.QueueFloats(roll)

		if _, err := hs.home.SaveAutomation("", "1", "on"); KindOf(err) != KindMissingField {
			t.Errorf("roll %v: err = %v, want missing field", roll, err)
		}
		if _, err := hs.home.SaveAutomation("Name", "", "on"); KindOf(err) != KindMissingField {
			t.Errorf("roll %v: err = %v, want missing field", roll, err)
		}

		st := hs.reload(t)
		if len(st.Automations) != 0 || len(st.Notifications) != 0 {
			t.Errorf("roll %v: state changed: %+v", roll, st)
		}
	}
}

func TestSaveAutomationFailureRateOption(t *testing.T) {
	hs := newHarness(t)
	WithAutomationFailureRate(0)(hs.home)
	hs.rng.QueueFloats(0.0)

	if _, err := hs.home.SaveAutomation("Always", "1", "on"); err != nil {
		t.Errorf("save with zero failure rate: %v", err)
	}
}
