package display

import (
	"os"
	"path/filepath"
	"testing"
)

func TestControllerWritesBacklightFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bl_power")
	ctrl := NewController(path, nil)

	if err := ctrl.PowerOff(); err != nil {
		t.Fatalf("power off: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backlight file: %v", err)
	}
	if string(data) != powerOff {
		t.Fatalf("expected %q, got %q", powerOff, data)
	}
	if ctrl.IsOn() {
		t.Fatalf("expected controller to report display off")
	}

	if err := ctrl.PowerOn(); err != nil {
		t.Fatalf("power on: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backlight file: %v", err)
	}
	if string(data) != powerOn {
		t.Fatalf("expected %q, got %q", powerOn, data)
	}
	if !ctrl.IsOn() {
		t.Fatalf("expected controller to report display on")
	}
}

func TestControllerWithoutPathIsNoop(t *testing.T) {
	ctrl := NewController("", nil)
	if err := ctrl.PowerOff(); err != nil {
		t.Fatalf("power off without path: %v", err)
	}
	if ctrl.IsOn() {
		t.Fatalf("expected state tracking to work without a path")
	}
}

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"07:00", "0 0 7 * * *", false},
		{"22:30", "0 30 22 * * *", false},
		{"23:59", "0 59 23 * * *", false},
		{"24:00", "", true},
		{"07:60", "", true},
		{"0700", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := buildDailySpec(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("buildDailySpec(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("buildDailySpec(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
