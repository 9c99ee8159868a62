package kms

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CaptureConfig is the mode the capture consumer should expect from the
// connector.
type CaptureConfig struct {
	Width       int
	Height      int
	RefreshRate int
	HDR         bool
}

// CaptureHandle identifies an opened capture target. The actual frame
// plumbing is owned by the streaming host; the handle carries everything it
// needs to attach.
type CaptureHandle struct {
	DeviceType string
	Connector  string
	Config     CaptureConfig
}

// Capturer opens a capture target on a named connector.
type Capturer interface {
	OpenCapture(deviceType, connectorName string, cfg CaptureConfig) (*CaptureHandle, error)
}

// OpenCapture validates that the named connector is currently connected and
// returns a handle for it.
func (e *SysfsEnumerator) OpenCapture(deviceType, connectorName string, cfg CaptureConfig) (*CaptureHandle, error) {
	names, err := e.ListConnectorNames()
	if err != nil {
		return nil, fmt.Errorf("connector enumeration failed: %w", err)
	}

	for _, name := range names {
		if name == connectorName {
			return &CaptureHandle{
				DeviceType: deviceType,
				Connector:  connectorName,
				Config:     cfg,
			}, nil
		}
	}

	return nil, fmt.Errorf("connector %s is not connected", connectorName)
}

// CardDevice returns the card device directory (e.g. card1) a connector
// name belongs to, or an empty string when the name is not a connector.
func CardDevice(connectorName string) string {
	base := filepath.Base(connectorName)
	idx := strings.Index(base, "-")
	if idx <= 0 || !strings.HasPrefix(base, "card") {
		return ""
	}
	return base[:idx]
}
