package tray

import "testing"

func TestTitles(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{toggleTitle(true), "● Enabled"},
		{toggleTitle(false), "○ Disabled"},
		{gestureTitle(""), "Gesture: none"},
		{gestureTitle("CALL ME"), "Gesture: CALL ME"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTray_ToggleBeforeReady(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("IsEnabled() should be true after two toggles")
	}
}

func TestTray_SetGestureBeforeReady(t *testing.T) {
	tr := New(false)
	tr.SetGesture("STOP")

	if tr.Gesture() != "STOP" {
		t.Errorf("Gesture() = %q, want STOP", tr.Gesture())
	}
	if tr.IsEnabled() {
		t.Error("IsEnabled() should reflect the initial state")
	}
}

func TestTray_OpenViewer(t *testing.T) {
	tr := New(true)
	tr.handleOpenViewer()

	called := false
	tr.OnOpenViewer(func() { called = true })
	tr.handleOpenViewer()

	if !called {
		t.Error("open viewer callback was not called")
	}
}
