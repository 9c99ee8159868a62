// Package kms reads the kernel mode-setting view of connected displays via
// sysfs. The lifecycle manager uses it to observe when the desktop has
// detected the virtual connector and to resolve it as a capture source.
package kms

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magne4000/displayd/internal/logging"
)

// VirtualConnectorMarker appears in the connector name of evdi-backed
// displays (e.g. card1-Virtual-1).
const VirtualConnectorMarker = "Virtual"

// DefaultDRMPath is where the kernel exposes DRM connector state.
const DefaultDRMPath = "/sys/class/drm"

// Enumerator lists the names of currently connected display connectors.
type Enumerator interface {
	ListConnectorNames() ([]string, error)
}

// SysfsEnumerator reads connector state from a sysfs DRM class directory.
type SysfsEnumerator struct {
	root string
}

// NewSysfsEnumerator creates an enumerator rooted at the given DRM class
// directory, usually DefaultDRMPath.
func NewSysfsEnumerator(root string) *SysfsEnumerator {
	return &SysfsEnumerator{root: root}
}

// ListConnectorNames returns the names of all connectors whose status is
// "connected". Connector directories look like card<N>-<type>-<index>;
// bare card<N> device directories are skipped.
func (e *SysfsEnumerator) ListConnectorNames() ([]string, error) {
	entries, err := os.ReadDir(e.root)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("kms")

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "card") || !strings.Contains(name, "-") {
			continue
		}

		statusPath := filepath.Join(e.root, name, "status")
		data, readErr := os.ReadFile(statusPath)
		if readErr != nil {
			continue
		}

		status := strings.TrimSpace(string(data))
		logger.Debug("Connector status", "connector", name, "status", status)
		if status == "connected" {
			names = append(names, name)
		}
	}

	return names, nil
}
