package vdisplay

import (
	"github.com/magne4000/displayd/pkg/drm/evdi"
)

// DeviceHandle is an open connection to exactly one virtual display device
// node. It is exclusively owned by the Manager for the duration of one
// session and must not be used outside of it.
type DeviceHandle interface {
	Index() int
	Connect(edid []byte) error
	Disconnect() error
	Close() error
	PollEvents(timeoutMs int) ([]evdi.Event, error)
}

// DeviceAPI abstracts the kernel-facing evdi package so the lifecycle
// controller can be driven by fakes in tests.
type DeviceAPI interface {
	// ModuleLoaded reports whether backing kernel support is loaded.
	ModuleLoaded() bool
	// CheckDevice classifies the device node at the given index.
	CheckDevice(index int) evdi.DeviceStatus
	// Open opens the device node at the given index.
	Open(index int) (DeviceHandle, error)
}

type kernelAPI struct{}

// KernelDeviceAPI returns the DeviceAPI backed by real evdi device nodes.
func KernelDeviceAPI() DeviceAPI {
	return kernelAPI{}
}

func (kernelAPI) ModuleLoaded() bool {
	return evdi.ModuleLoaded()
}

func (kernelAPI) CheckDevice(index int) evdi.DeviceStatus {
	return evdi.CheckDevice(index)
}

func (kernelAPI) Open(index int) (DeviceHandle, error) {
	return evdi.Open(index)
}
