package vdisplay

import (
	"testing"

	"github.com/magne4000/displayd/pkg/drm/evdi"
)

func TestLocateSkipsUnusableNodes(t *testing.T) {
	api := &fakeDeviceAPI{
		moduleLoaded: true,
		statuses: []evdi.DeviceStatus{
			evdi.StatusUnrecognized,
			evdi.StatusNotPresent,
			evdi.StatusAvailable,
			evdi.StatusAvailable,
		},
	}

	locator := NewLocator(api, testLogger())
	index, err := locator.Locate()
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if index != 2 {
		t.Errorf("Locate() = %d, want 2", index)
	}
}

func TestLocateModuleNotLoaded(t *testing.T) {
	api := &fakeDeviceAPI{moduleLoaded: false}

	locator := NewLocator(api, testLogger())
	_, err := locator.Locate()
	if err == nil {
		t.Fatal("Locate() expected error when module is not loaded")
	}
	if got := ErrorCode(err); got != ErrCodeSupportNotLoaded {
		t.Errorf("ErrorCode = %q, want %q", got, ErrCodeSupportNotLoaded)
	}
	if api.locateCalls != 0 {
		t.Errorf("probed %d nodes before the module check, want 0", api.locateCalls)
	}
}

func TestLocateNoDeviceFound(t *testing.T) {
	api := &fakeDeviceAPI{
		moduleLoaded: true,
		statuses: []evdi.DeviceStatus{
			evdi.StatusUnrecognized,
			evdi.StatusUnrecognized,
		},
	}

	locator := NewLocator(api, testLogger())
	_, err := locator.Locate()
	if err == nil {
		t.Fatal("Locate() expected error when no node is available")
	}
	if got := ErrorCode(err); got != ErrCodeNoDeviceFound {
		t.Errorf("ErrorCode = %q, want %q", got, ErrCodeNoDeviceFound)
	}
	if api.locateCalls != maxDeviceIndex {
		t.Errorf("probed %d nodes, want the full scan of %d", api.locateCalls, maxDeviceIndex)
	}
}
