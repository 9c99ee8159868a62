package kms

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConnector creates a sysfs-style connector directory with a status file.
func writeConnector(t *testing.T, root, name, status string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if status != "" {
		if err := os.WriteFile(filepath.Join(dir, "status"), []byte(status+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListConnectorNames(t *testing.T) {
	root := t.TempDir()
	writeConnector(t, root, "card0-HDMI-A-1", "connected")
	writeConnector(t, root, "card0-DP-1", "disconnected")
	writeConnector(t, root, "card1-Virtual-1", "connected")
	writeConnector(t, root, "card0", "") // bare device dir, no status
	writeConnector(t, root, "renderD128", "connected")

	enum := NewSysfsEnumerator(root)
	names, err := enum.ListConnectorNames()
	if err != nil {
		t.Fatalf("ListConnectorNames() error = %v", err)
	}

	want := map[string]bool{"card0-HDMI-A-1": true, "card1-Virtual-1": true}
	if len(names) != len(want) {
		t.Fatalf("ListConnectorNames() = %v, want %v", names, want)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected connector %q", n)
		}
	}
}

func TestListConnectorNamesMissingRoot(t *testing.T) {
	enum := NewSysfsEnumerator(filepath.Join(t.TempDir(), "missing"))
	if _, err := enum.ListConnectorNames(); err == nil {
		t.Error("ListConnectorNames() expected error for missing root")
	}
}

func TestOpenCapture(t *testing.T) {
	root := t.TempDir()
	writeConnector(t, root, "card1-Virtual-1", "connected")

	enum := NewSysfsEnumerator(root)
	cfg := CaptureConfig{Width: 1920, Height: 1080, RefreshRate: 60}

	handle, err := enum.OpenCapture("kms", "card1-Virtual-1", cfg)
	if err != nil {
		t.Fatalf("OpenCapture() error = %v", err)
	}
	if handle.Connector != "card1-Virtual-1" || handle.Config != cfg {
		t.Errorf("handle = %+v", handle)
	}

	if _, err := enum.OpenCapture("kms", "card0-HDMI-A-1", cfg); err == nil {
		t.Error("OpenCapture() expected error for disconnected connector")
	}
}

func TestCardDevice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"card1-Virtual-1", "card1"},
		{"card0-HDMI-A-1", "card0"},
		{"card0", ""},
		{"renderD128", ""},
	}
	for _, tt := range tests {
		if got := CardDevice(tt.in); got != tt.want {
			t.Errorf("CardDevice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
