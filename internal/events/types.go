package events

// Event type constants for kelindar/event.
const (
	TypeDisplayCreated uint32 = iota + 1
	TypeDisplayDestroyed
	TypeDisplayDegraded
	TypeDisplayModeChanged
	TypeDevicePower
	TypeConnectorResolved
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DisplayCreatedEvent is published when a virtual display reaches the
// active state.
type DisplayCreatedEvent struct {
	Width       int    `json:"width" example:"1920" doc:"Display width in pixels"`
	Height      int    `json:"height" example:"1080" doc:"Display height in pixels"`
	RefreshRate int    `json:"refresh_rate" example:"60" doc:"Refresh rate in Hz"`
	HDR         bool   `json:"hdr" example:"false" doc:"Whether HDR was requested"`
	Degraded    bool   `json:"degraded" example:"false" doc:"True when KMS never confirmed detection"`
	DeviceIndex int    `json:"device_index" example:"1" doc:"DRM card index backing the display"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayCreatedEvent.
func (e DisplayCreatedEvent) Type() uint32 { return TypeDisplayCreated }

// DisplayDestroyedEvent is published when the virtual display is torn down.
type DisplayDestroyedEvent struct {
	DeviceIndex int    `json:"device_index" example:"1" doc:"DRM card index that was released"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayDestroyedEvent.
func (e DisplayDestroyedEvent) Type() uint32 { return TypeDisplayDestroyed }

// DisplayDegradedEvent is published when detection timed out but the
// session was kept alive under the degrade policy. Downstream capture may
// fail; consumers should surface this to operators.
type DisplayDegradedEvent struct {
	Attempts  int    `json:"attempts" example:"50" doc:"Poll attempts spent waiting for detection"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayDegradedEvent.
func (e DisplayDegradedEvent) Type() uint32 { return TypeDisplayDegraded }

// DisplayModeChangedEvent mirrors a mode-change notification from the
// device. The manager caches the new mode before publishing.
type DisplayModeChangedEvent struct {
	Width        int    `json:"width" example:"1920" doc:"New width in pixels"`
	Height       int    `json:"height" example:"1080" doc:"New height in pixels"`
	RefreshRate  int    `json:"refresh_rate" example:"60" doc:"New refresh rate in Hz"`
	BitsPerPixel int    `json:"bits_per_pixel" example:"32" doc:"Framebuffer depth"`
	Timestamp    string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayModeChangedEvent.
func (e DisplayModeChangedEvent) Type() uint32 { return TypeDisplayModeChanged }

// DevicePowerEvent mirrors a DPMS power-state notification from the device.
type DevicePowerEvent struct {
	DPMS      int    `json:"dpms" example:"0" doc:"DPMS power state reported by the device"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicePowerEvent.
func (e DevicePowerEvent) Type() uint32 { return TypeDevicePower }

// ConnectorResolvedEvent is published when the capture bridge maps the
// active virtual display to a KMS connector name.
type ConnectorResolvedEvent struct {
	Requested string `json:"requested" example:"DP-1" doc:"Connector name requested by the caller"`
	Resolved  string `json:"resolved" example:"card1-Virtual-1" doc:"Connector name actually used"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ConnectorResolvedEvent.
func (e ConnectorResolvedEvent) Type() uint32 { return TypeConnectorResolved }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"vdisplay" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
