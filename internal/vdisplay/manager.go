// Package vdisplay manages the lifecycle of an on-demand EVDI virtual
// display used as a capture source: locating a device node, synthesizing
// and connecting an EDID, waiting for KMS detection, resolving the capture
// connector, and tearing everything down again.
package vdisplay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/magne4000/displayd/internal/edid"
	"github.com/magne4000/displayd/internal/events"
	"github.com/magne4000/displayd/internal/kms"
	"github.com/magne4000/displayd/internal/metrics"
	"github.com/magne4000/displayd/pkg/drm/evdi"
)

// PlaceholderDisplayName is always offered for selection, even when no
// device is active, since the display is created on demand when streaming
// starts.
const PlaceholderDisplayName = "EVDI Virtual Display"

// DetectionPolicy decides what happens when KMS never observes the new
// connector within the wait budget.
type DetectionPolicy string

// Detection timeout policies.
const (
	// PolicyDegrade keeps the session alive and reports degraded success.
	// Downstream capture may still fail; callers are warned via the
	// degraded flag.
	PolicyDegrade DetectionPolicy = "degrade"
	// PolicyFail tears the session down and reports DETECTION_TIMEOUT.
	PolicyFail DetectionPolicy = "fail"
)

// DisplayRequest is the immutable input to one creation attempt.
type DisplayRequest struct {
	Width       int
	Height      int
	RefreshRate int
	HDR         bool
}

// RuntimeConfig holds the manager settings that may be changed while the
// daemon runs (via the config file watcher).
type RuntimeConfig struct {
	DetectionPolicy     DetectionPolicy
	DetectionIntervalMs int
	DetectionAttempts   int
}

// Options configures a Manager.
type Options struct {
	DeviceAPI  DeviceAPI
	Enumerator kms.Enumerator
	Capturer   kms.Capturer
	EventBus   *events.Bus      // optional
	Metrics    *metrics.Metrics // optional
	Logger     *slog.Logger

	DetectionPolicy   DetectionPolicy
	DetectionInterval time.Duration
	DetectionAttempts int
}

// Manager is the session context owning the virtual display state machine.
// All mutable state, including the lock serializing create/destroy, lives
// here; multiple independent managers can coexist (one per test, one per
// process in production since only one virtual display is supported).
type Manager struct {
	api        DeviceAPI
	enumerator kms.Enumerator
	capturer   kms.Capturer
	bus        *events.Bus
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu     sync.Mutex
	state  State
	handle DeviceHandle

	// Active session configuration, valid while state != StateInactive.
	width       int
	height      int
	refreshRate int
	hdrEnabled  bool
	degraded    bool

	policy          DetectionPolicy
	detectionBudget int
	detectionPeriod time.Duration
}

// NewManager creates a virtual display manager in the Inactive state.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy := opts.DetectionPolicy
	if policy == "" {
		policy = PolicyDegrade
	}

	interval := opts.DetectionInterval
	if interval <= 0 {
		interval = DefaultDetectionInterval
	}
	attempts := opts.DetectionAttempts
	if attempts <= 0 {
		attempts = DefaultDetectionAttempts
	}

	return &Manager{
		api:             opts.DeviceAPI,
		enumerator:      opts.Enumerator,
		capturer:        opts.Capturer,
		bus:             opts.EventBus,
		metrics:         opts.Metrics,
		logger:          logger,
		state:           StateInactive,
		policy:          policy,
		detectionBudget: attempts,
		detectionPeriod: interval,
	}
}

// ListDisplayNames returns the selectable display names. The placeholder
// is always present so the UI can offer the virtual display before a
// session starts.
func (m *Manager) ListDisplayNames() []string {
	m.mu.Lock()
	active := m.state == StateActive
	m.mu.Unlock()

	m.logger.Debug("Listing virtual display names", "active", active)
	return []string{PlaceholderDisplayName}
}

// CheckSupport reports whether backing kernel support is loaded.
func (m *Manager) CheckSupport() bool {
	return m.api.ModuleLoaded()
}

// IsActive reports whether a virtual display session is active.
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateActive
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ActiveMode returns the mode of the active session and whether it is
// running degraded. The zero request is returned while inactive.
func (m *Manager) ActiveMode() (req DisplayRequest, degraded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateInactive {
		return DisplayRequest{}, false
	}
	return DisplayRequest{
		Width:       m.width,
		Height:      m.height,
		RefreshRate: m.refreshRate,
		HDR:         m.hdrEnabled,
	}, m.degraded
}

// ApplyConfig updates the runtime-tunable settings. Takes effect on the
// next create.
func (m *Manager) ApplyConfig(cfg RuntimeConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.DetectionPolicy == PolicyDegrade || cfg.DetectionPolicy == PolicyFail {
		m.policy = cfg.DetectionPolicy
	}
	if cfg.DetectionIntervalMs > 0 {
		m.detectionPeriod = time.Duration(cfg.DetectionIntervalMs) * time.Millisecond
	}
	if cfg.DetectionAttempts > 0 {
		m.detectionBudget = cfg.DetectionAttempts
	}
	m.logger.Info("Applied runtime config",
		"policy", string(m.policy),
		"detection_interval", m.detectionPeriod,
		"detection_attempts", m.detectionBudget)
}

// PrepareStream creates the virtual display for a streaming session:
// locate → open → synthesize EDID → connect → await detection. It blocks
// until the display is Active or a terminal failure occurred. Calling it
// while a session is already in progress is an idempotent success and does
// not re-run the locator.
//
// The returned degraded flag is true when detection timed out but the
// session was kept under PolicyDegrade; downstream capture may then fail.
func (m *Manager) PrepareStream(ctx context.Context, req DisplayRequest) (degraded bool, err error) {
	if req.Width <= 0 || req.Height <= 0 || req.RefreshRate <= 0 {
		return false, NewDisplayError(ErrCodeInvalidRequest,
			"width, height and refresh rate must be positive", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateInactive {
		m.logger.Warn("Virtual display already active, create is a no-op", "state", string(m.state))
		return m.degraded, nil
	}

	m.logger.Info("Preparing virtual display for streaming session",
		"width", req.Width, "height", req.Height,
		"refresh_rate", req.RefreshRate, "hdr", req.HDR)

	m.state = StateOpening

	locator := NewLocator(m.api, m.logger)
	index, err := locator.Locate()
	if err != nil {
		m.state = StateInactive
		m.metrics.RecordCreate(metrics.OutcomeFailure)
		return false, err
	}

	handle, err := m.api.Open(index)
	if err != nil {
		m.logger.Error("Failed to open evdi device", "index", index, "error", err)
		m.state = StateInactive
		m.metrics.RecordCreate(metrics.OutcomeFailure)
		return false, NewDisplayError(ErrCodeAllocationFailed, "failed to open device node", err)
	}

	block := edid.Synthesize(req.Width, req.Height, req.RefreshRate, req.HDR)
	if req.HDR {
		// HDR EDID extension blocks are a known gap; the flag is accepted
		// but no HDR signaling reaches the display stack.
		m.logger.Debug("HDR requested but HDR EDID extension is not implemented")
	}

	m.logger.Debug("Connecting virtual display", "index", index, "edid_bytes", len(block))
	if err := handle.Connect(block); err != nil {
		m.logger.Error("Device rejected descriptor", "index", index, "error", err)
		if closeErr := handle.Close(); closeErr != nil {
			m.logger.Warn("Failed to close device after connect failure", "error", closeErr)
		}
		m.state = StateInactive
		m.metrics.RecordCreate(metrics.OutcomeFailure)
		return false, NewDisplayError(ErrCodeConnectFailed, "device rejected the display descriptor", err)
	}

	m.state = StateConnected
	m.handle = handle
	m.width = req.Width
	m.height = req.Height
	m.refreshRate = req.RefreshRate
	m.hdrEnabled = req.HDR

	// The kernel DRM subsystem needs time to enumerate the new connector.
	m.state = StateAwaitingDetection
	waiter := NewWaiter(m.enumerator, m.detectionPeriod, m.detectionBudget, m.logger)

	waitStart := time.Now()
	attempts, waitErr := waiter.AwaitDetection(ctx)
	m.metrics.RecordDetectionWait(time.Since(waitStart), attempts)

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) || errors.Is(waitErr, context.DeadlineExceeded) {
			m.logger.Warn("Detection wait cancelled, rolling back", "attempts", attempts)
			m.teardownLocked()
			m.metrics.RecordCreate(metrics.OutcomeFailure)
			return false, NewDisplayError(ErrCodeDetectionTimeout, "detection wait cancelled", waitErr)
		}

		if m.policy == PolicyFail {
			m.logger.Error("KMS never detected the virtual connector, tearing down",
				"attempts", attempts)
			m.teardownLocked()
			m.metrics.RecordCreate(metrics.OutcomeFailure)
			return false, waitErr
		}

		// Last-resort acceptance: keep the session and warn the caller.
		m.logger.Warn("KMS never detected the virtual connector, continuing degraded",
			"attempts", attempts)
		m.degraded = true
		if m.bus != nil {
			m.bus.Publish(events.DisplayDegradedEvent{
				Attempts:  attempts,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}
	}

	m.state = StateActive
	m.metrics.SetActive(true)
	if m.degraded {
		m.metrics.RecordCreate(metrics.OutcomeDegraded)
	} else {
		m.metrics.RecordCreate(metrics.OutcomeSuccess)
	}

	m.logger.Info("Virtual display active",
		"index", index,
		"width", m.width, "height", m.height,
		"refresh_rate", m.refreshRate,
		"hdr", m.hdrEnabled,
		"degraded", m.degraded)

	if m.bus != nil {
		m.bus.Publish(events.DisplayCreatedEvent{
			Width:       m.width,
			Height:      m.height,
			RefreshRate: m.refreshRate,
			HDR:         m.hdrEnabled,
			Degraded:    m.degraded,
			DeviceIndex: index,
			Timestamp:   time.Now().Format(time.RFC3339),
		})
	}

	return m.degraded, nil
}

// Destroy tears down the virtual display. It is idempotent and best-effort:
// underlying disconnect/close failures are logged but never surfaced, so it
// is always safe to call, including at shutdown and on error paths.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateInactive {
		m.logger.Debug("Destroy called but no virtual display is active")
		return
	}

	m.logger.Info("Destroying virtual display")
	m.state = StateTearingDown

	index := -1
	if m.handle != nil {
		index = m.handle.Index()
	}

	m.teardownLocked()
	m.metrics.RecordDestroy()
	m.metrics.SetActive(false)

	if m.bus != nil {
		m.bus.Publish(events.DisplayDestroyedEvent{
			DeviceIndex: index,
			Timestamp:   time.Now().Format(time.RFC3339),
		})
	}

	m.logger.Info("Virtual display destroyed")
}

// teardownLocked releases the device handle and resets all session state.
// Callers must hold the lock.
func (m *Manager) teardownLocked() {
	if m.handle != nil {
		if err := m.handle.Disconnect(); err != nil {
			m.logger.Warn("Disconnect failed during teardown", "error", err)
		}
		if err := m.handle.Close(); err != nil {
			m.logger.Warn("Close failed during teardown", "error", err)
		}
		m.handle = nil
	}

	m.state = StateInactive
	m.width = 0
	m.height = 0
	m.refreshRate = 0
	m.hdrEnabled = false
	m.degraded = false
}

// OpenDisplay resolves the active virtual display to a connector and opens
// a capture target on it with the caller's requested mode; a zero request
// falls back to the active session mode. It returns (nil, nil) while no
// session is active; encoder validation probes this path before any stream
// exists and must degrade silently. A non-nil error also means "fall back to
// the default capture source", never a fatal condition.
func (m *Manager) OpenDisplay(ctx context.Context, deviceType, requestedName string, req DisplayRequest) (*kms.CaptureHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		m.logger.Debug("Virtual display not active, call PrepareStream before capture")
		return nil, nil
	}
	cfg := kms.CaptureConfig{
		Width:       req.Width,
		Height:      req.Height,
		RefreshRate: req.RefreshRate,
		HDR:         req.HDR,
	}
	if req.Width <= 0 || req.Height <= 0 || req.RefreshRate <= 0 {
		cfg = kms.CaptureConfig{
			Width:       m.width,
			Height:      m.height,
			RefreshRate: m.refreshRate,
			HDR:         m.hdrEnabled,
		}
	}
	m.mu.Unlock()

	bridge := NewBridge(m.enumerator, m.logger)
	connector, found := bridge.ResolveConnector(requestedName)
	if found && m.bus != nil {
		m.bus.Publish(events.ConnectorResolvedEvent{
			Requested: requestedName,
			Resolved:  connector,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	handle, err := m.capturer.OpenCapture(deviceType, connector, cfg)
	if err != nil {
		m.logger.Warn("Capture open failed", "connector", connector, "error", err)
		return nil, err
	}

	m.logger.Debug("Capture target opened", "connector", connector, "device_type", deviceType)
	return handle, nil
}

// PollDeviceEvents drains pending device notifications, updates the cached
// active mode on mode changes, and republishes everything on the event bus.
// The whole drain runs under the lock (a zero poll timeout never blocks) so
// a concurrent Destroy cannot close the handle mid-poll. Create/destroy
// correctness never depends on this; it exists for observability.
func (m *Manager) PollDeviceEvents() {
	var publish []events.Event

	m.mu.Lock()
	if m.handle == nil {
		m.mu.Unlock()
		return
	}

	deviceEvents, err := m.handle.PollEvents(0)
	if err != nil {
		m.mu.Unlock()
		m.logger.Debug("Device event poll failed", "error", err)
		return
	}

	for _, ev := range deviceEvents {
		switch ev.Kind {
		case evdi.EventModeChanged:
			m.logger.Debug("Device mode changed",
				"width", ev.Mode.Width, "height", ev.Mode.Height,
				"refresh_rate", ev.Mode.RefreshRate, "bpp", ev.Mode.BitsPerPixel)

			if m.state != StateInactive {
				m.width = ev.Mode.Width
				m.height = ev.Mode.Height
				m.refreshRate = ev.Mode.RefreshRate
			}

			publish = append(publish, events.DisplayModeChangedEvent{
				Width:        ev.Mode.Width,
				Height:       ev.Mode.Height,
				RefreshRate:  ev.Mode.RefreshRate,
				BitsPerPixel: ev.Mode.BitsPerPixel,
				Timestamp:    time.Now().Format(time.RFC3339),
			})

		case evdi.EventPowerState:
			m.logger.Debug("Device power state changed", "dpms", ev.DPMS)
			publish = append(publish, events.DevicePowerEvent{
				DPMS:      ev.DPMS,
				Timestamp: time.Now().Format(time.RFC3339),
			})

		case evdi.EventBufferReady:
			// The capture consumer owns buffer handling.

		case evdi.EventCRTCState:
			m.logger.Debug("Device CRTC state changed", "state", ev.CRTC)
		}
	}
	m.mu.Unlock()

	// Bus fan-out stays outside the lock; subscribers may call back in.
	if m.bus == nil {
		return
	}
	for _, ev := range publish {
		m.bus.Publish(ev)
	}
}
