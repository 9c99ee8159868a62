package vdisplay

import (
	"log/slog"
	"strings"

	"github.com/magne4000/displayd/internal/kms"
)

// Bridge resolves the active virtual display to a connector name the
// capture subsystem can open.
type Bridge struct {
	enumerator kms.Enumerator
	logger     *slog.Logger
}

// NewBridge creates a bridge over the given enumerator.
func NewBridge(enumerator kms.Enumerator, logger *slog.Logger) *Bridge {
	return &Bridge{enumerator: enumerator, logger: logger}
}

// ResolveConnector returns the name of the virtual connector, identified by
// its class marker rather than the caller-requested name. When no virtual
// connector is found the requested name is returned with found=false and
// the caller degrades to it; this is best-effort, not a hard failure.
func (b *Bridge) ResolveConnector(requestedName string) (name string, found bool) {
	names, err := b.enumerator.ListConnectorNames()
	if err != nil {
		b.logger.Warn("Connector enumeration failed, falling back to requested name",
			"requested", requestedName, "error", err)
		return requestedName, false
	}

	for _, n := range names {
		if strings.Contains(n, kms.VirtualConnectorMarker) {
			if requestedName != "" && requestedName != n {
				b.logger.Info("Overriding requested display with virtual connector",
					"requested", requestedName, "resolved", n)
			}
			return n, true
		}
	}

	b.logger.Warn("No virtual connector in enumeration list, falling back",
		"requested", requestedName)
	return requestedName, false
}
