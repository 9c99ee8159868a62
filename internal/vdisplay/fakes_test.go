package vdisplay

import (
	"errors"
	"io"
	"log/slog"

	"github.com/magne4000/displayd/internal/kms"
	"github.com/magne4000/displayd/pkg/drm/evdi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDeviceAPI scripts the module marker and the per-index probe results.
type fakeDeviceAPI struct {
	moduleLoaded bool
	statuses     []evdi.DeviceStatus

	locateCalls int
	openCalls   int
	openErr     error
	handle      *fakeHandle
}

func (f *fakeDeviceAPI) ModuleLoaded() bool { return f.moduleLoaded }

func (f *fakeDeviceAPI) CheckDevice(index int) evdi.DeviceStatus {
	f.locateCalls++
	if index < len(f.statuses) {
		return f.statuses[index]
	}
	return evdi.StatusNotPresent
}

func (f *fakeDeviceAPI) Open(index int) (DeviceHandle, error) {
	f.openCalls++
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.handle == nil {
		f.handle = &fakeHandle{index: index}
	}
	return f.handle, nil
}

type fakeHandle struct {
	index       int
	connectErr  error
	connected   bool
	disconnects int
	closes      int
	events      []evdi.Event

	// Set when PollEvents runs after Close; the manager's lock must make
	// that ordering impossible.
	polledAfterClose bool
}

func (h *fakeHandle) Index() int { return h.index }

func (h *fakeHandle) Connect(edid []byte) error {
	if h.connectErr != nil {
		return h.connectErr
	}
	if len(edid) == 0 {
		return errors.New("empty edid")
	}
	h.connected = true
	return nil
}

func (h *fakeHandle) Disconnect() error {
	h.disconnects++
	h.connected = false
	return nil
}

func (h *fakeHandle) Close() error {
	h.closes++
	return nil
}

func (h *fakeHandle) PollEvents(timeoutMs int) ([]evdi.Event, error) {
	if h.closes > 0 {
		h.polledAfterClose = true
	}
	out := h.events
	h.events = nil
	return out, nil
}

// fakeEnumerator returns one scripted connector list per call and repeats
// the last one when the script runs out.
type fakeEnumerator struct {
	script [][]string
	err    error
	calls  int
}

func (f *fakeEnumerator) ListConnectorNames() ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.script) == 0 {
		return nil, nil
	}
	i := f.calls - 1
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	return f.script[i], nil
}

type fakeCapturer struct {
	err  error
	last *kms.CaptureHandle
}

func (f *fakeCapturer) OpenCapture(deviceType, connectorName string, cfg kms.CaptureConfig) (*kms.CaptureHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.last = &kms.CaptureHandle{DeviceType: deviceType, Connector: connectorName, Config: cfg}
	return f.last, nil
}
