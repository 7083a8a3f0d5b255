package models

import "testing"

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.Enabled {
		t.Error("expected enabled by default")
	}
	if s.MaxCommentsPerHour != 10 {
		t.Errorf("MaxCommentsPerHour = %d, want 10", s.MaxCommentsPerHour)
	}
	if s.NotificationEmail != "" {
		t.Errorf("NotificationEmail = %q, want empty", s.NotificationEmail)
	}
	if !s.ErrorNotification {
		t.Error("expected error notifications on by default")
	}
}

// TestSettingsPatchApply verifies that only non-nil fields are merged.
func TestSettingsPatchApply(t *testing.T) {
	off := false
	limit := 3

	got := SettingsPatch{Enabled: &off, MaxCommentsPerHour: &limit}.Apply(DefaultSettings())

	if got.Enabled {
		t.Error("Enabled should be false after patch")
	}
	if got.MaxCommentsPerHour != 3 {
		t.Errorf("MaxCommentsPerHour = %d, want 3", got.MaxCommentsPerHour)
	}
	if !got.ErrorNotification {
		t.Error("ErrorNotification should be untouched")
	}

	same := SettingsPatch{}.Apply(got)
	if same != got {
		t.Errorf("empty patch changed settings: %+v -> %+v", got, same)
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name             string
		successes, total int
		want             float64
	}{
		{"empty", 0, 0, 100},
		{"all good", 4, 4, 100},
		{"half", 1, 2, 50},
		{"none", 0, 5, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SuccessRate(tc.successes, tc.total); got != tc.want {
				t.Errorf("SuccessRate(%d, %d) = %v, want %v", tc.successes, tc.total, got, tc.want)
			}
		})
	}
}
