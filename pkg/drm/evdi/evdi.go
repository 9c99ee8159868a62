// Package evdi provides pure Go access to EVDI virtual display device nodes.
//
// EVDI (Extensible Virtual Display Interface) exposes virtual displays as
// DRM card devices. This package probes, opens and connects those devices
// without cgo by issuing the driver ioctls directly.
package evdi

// DeviceStatus classifies a DRM card index during a probe scan.
type DeviceStatus int

// Probe results for a device index.
const (
	// StatusAvailable means the node exists and is driven by the evdi module.
	StatusAvailable DeviceStatus = iota
	// StatusUnrecognized means the node exists but belongs to another driver.
	StatusUnrecognized
	// StatusNotPresent means no device node exists at this index.
	StatusNotPresent
)

// String returns a human-readable status name.
func (s DeviceStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusUnrecognized:
		return "unrecognized"
	case StatusNotPresent:
		return "not_present"
	default:
		return "unknown"
	}
}

// EventKind identifies a device notification delivered by PollEvents.
type EventKind int

// Device notification kinds. These replace the raw callback pointers of the
// C library with typed values the caller can poll for.
const (
	EventModeChanged EventKind = iota
	EventPowerState
	EventBufferReady
	EventCRTCState
)

// Mode describes a display mode reported by a mode-change event.
type Mode struct {
	Width        int
	Height       int
	RefreshRate  int
	BitsPerPixel int
}

// Event is a typed device notification.
type Event struct {
	Kind   EventKind
	Mode   Mode // valid for EventModeChanged
	DPMS   int  // valid for EventPowerState
	Buffer int  // valid for EventBufferReady
	CRTC   int  // valid for EventCRTCState
}
