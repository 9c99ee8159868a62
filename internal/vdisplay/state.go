package vdisplay

// State represents the current state of the virtual display session.
type State string

// Session states. The lifecycle runs Inactive → Opening → Connected →
// AwaitingDetection → Active → TearingDown → Inactive; every failure path
// returns to Inactive with no partial state retained.
const (
	StateInactive          State = "inactive"           // No session
	StateOpening           State = "opening"            // Locating and opening a device node
	StateConnected         State = "connected"          // Descriptor accepted by the device
	StateAwaitingDetection State = "awaiting_detection" // Waiting for KMS to enumerate the connector
	StateActive            State = "active"             // Display available for capture
	StateTearingDown       State = "tearing_down"       // Being destroyed
)
