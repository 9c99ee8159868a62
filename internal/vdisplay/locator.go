package vdisplay

import (
	"fmt"
	"log/slog"

	"github.com/magne4000/displayd/pkg/drm/evdi"
)

// maxDeviceIndex bounds the probe scan (card0 through card15).
const maxDeviceIndex = 16

// Locator finds an evdi device node by scanning card indices in ascending
// order. The scan strategy was chosen over attach-or-create: it works
// against every evdi module version, needs no allocation privileges, and
// makes the lowest-index-wins selection deterministic. A probe failure at
// one index skips to the next rather than aborting the scan.
type Locator struct {
	api    DeviceAPI
	logger *slog.Logger
}

// NewLocator creates a locator over the given device API.
func NewLocator(api DeviceAPI, logger *slog.Logger) *Locator {
	return &Locator{api: api, logger: logger}
}

// Locate returns the index of the first available evdi device node. It
// fails fast with SUPPORT_NOT_LOADED when the kernel module marker is
// absent, so callers get an actionable error instead of a slow failure
// deeper in the stack.
func (l *Locator) Locate() (int, error) {
	if !l.api.ModuleLoaded() {
		l.logger.Error("evdi kernel module is not loaded",
			"hint", "install evdi-dkms and run: modprobe evdi")
		return -1, NewDisplayError(ErrCodeSupportNotLoaded,
			"evdi kernel module is not loaded or failed to initialize", nil)
	}

	for index := 0; index < maxDeviceIndex; index++ {
		status := l.api.CheckDevice(index)
		l.logger.Debug("Probed device node", "index", index, "status", status.String())

		if status == evdi.StatusAvailable {
			l.logger.Info("Found available evdi device", "index", index)
			return index, nil
		}
	}

	l.logger.Error("No available evdi device found",
		"scanned", maxDeviceIndex,
		"hint", "check device nodes: ls -la /dev/dri/card*")
	return -1, NewDisplayError(ErrCodeNoDeviceFound,
		fmt.Sprintf("no evdi device in card0..card%d", maxDeviceIndex-1), nil)
}
