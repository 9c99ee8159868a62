//go:build linux

package evdi

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeDeviceTree builds a devfs/sysfs layout under a temp dir and points the
// package path variables at it for the duration of the test.
func fakeDeviceTree(t *testing.T) (devDir, sysDir string) {
	t.Helper()
	root := t.TempDir()

	devDir = filepath.Join(root, "dev", "dri")
	sysDir = filepath.Join(root, "sys", "class", "drm")
	if err := os.MkdirAll(devDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(sysDir, 0o755); err != nil {
		t.Fatal(err)
	}

	origDev, origSys := devDriPath, sysDrmPath
	devDriPath, sysDrmPath = devDir, sysDir
	t.Cleanup(func() {
		devDriPath, sysDrmPath = origDev, origSys
	})

	return devDir, sysDir
}

// addCard creates a card node bound to the given driver name. An empty
// driver name leaves the node without a driver symlink.
func addCard(t *testing.T, devDir, sysDir string, index int, driver string) {
	t.Helper()

	node := filepath.Join(devDir, "card"+itoa(index))
	if err := os.WriteFile(node, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if driver == "" {
		return
	}

	deviceDir := filepath.Join(sysDir, "card"+itoa(index), "device")
	if err := os.MkdirAll(deviceDir, 0o755); err != nil {
		t.Fatal(err)
	}

	driverDir := filepath.Join(sysDir, "..", "drivers", driver)
	if err := os.MkdirAll(driverDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(driverDir, filepath.Join(deviceDir, "driver")); err != nil {
		t.Fatal(err)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestCheckDeviceClassification(t *testing.T) {
	devDir, sysDir := fakeDeviceTree(t)

	addCard(t, devDir, sysDir, 0, "i915")
	addCard(t, devDir, sysDir, 1, "evdi")
	addCard(t, devDir, sysDir, 2, "")

	tests := []struct {
		index int
		want  DeviceStatus
	}{
		{0, StatusUnrecognized},
		{1, StatusAvailable},
		{2, StatusUnrecognized}, // node exists, no driver binding
		{3, StatusNotPresent},
	}

	for _, tt := range tests {
		if got := CheckDevice(tt.index); got != tt.want {
			t.Errorf("CheckDevice(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestModuleLoaded(t *testing.T) {
	orig := sysModulePath
	t.Cleanup(func() { sysModulePath = orig })

	dir := t.TempDir()
	sysModulePath = filepath.Join(dir, "evdi")

	if ModuleLoaded() {
		t.Error("ModuleLoaded() = true before marker exists")
	}

	if err := os.MkdirAll(sysModulePath, 0o755); err != nil {
		t.Fatal(err)
	}
	if !ModuleLoaded() {
		t.Error("ModuleLoaded() = false after marker created")
	}
}

func TestDeviceStatusString(t *testing.T) {
	tests := []struct {
		status DeviceStatus
		want   string
	}{
		{StatusAvailable, "available"},
		{StatusUnrecognized, "unrecognized"},
		{StatusNotPresent, "not_present"},
		{DeviceStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("DeviceStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
