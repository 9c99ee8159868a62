//go:build !linux

package evdi

import "fmt"

// EVDI is a Linux kernel module; on other platforms every probe reports the
// device as absent so callers degrade gracefully.

// ModuleLoaded always returns false on non-Linux platforms.
func ModuleLoaded() bool {
	return false
}

// CheckDevice always reports StatusNotPresent on non-Linux platforms.
func CheckDevice(_ int) DeviceStatus {
	return StatusNotPresent
}

// Device is a placeholder handle on non-Linux platforms.
type Device struct{}

// Open always fails on non-Linux platforms.
func Open(_ int) (*Device, error) {
	return nil, fmt.Errorf("evdi is only supported on linux")
}

// Index returns -1 on non-Linux platforms.
func (d *Device) Index() int { return -1 }

// Connect always fails on non-Linux platforms.
func (d *Device) Connect(_ []byte) error {
	return fmt.Errorf("evdi is only supported on linux")
}

// Disconnect always fails on non-Linux platforms.
func (d *Device) Disconnect() error {
	return fmt.Errorf("evdi is only supported on linux")
}

// Close is a no-op on non-Linux platforms.
func (d *Device) Close() error { return nil }

// PollEvents returns no events on non-Linux platforms.
func (d *Device) PollEvents(_ int) ([]Event, error) {
	return nil, nil
}
