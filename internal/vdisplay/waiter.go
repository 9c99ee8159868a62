package vdisplay

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/magne4000/displayd/internal/kms"
)

// Detection wait defaults: 50 polls at 100ms, 5 seconds total.
const (
	DefaultDetectionInterval = 100 * time.Millisecond
	DefaultDetectionAttempts = 50
)

// Waiter blocks until the enumeration subsystem observes a virtual
// connector, polling at a fixed interval up to a fixed attempt budget.
type Waiter struct {
	enumerator kms.Enumerator
	interval   time.Duration
	attempts   int
	logger     *slog.Logger
}

// NewWaiter creates a waiter over the given enumerator. Non-positive
// interval or attempts fall back to the defaults.
func NewWaiter(enumerator kms.Enumerator, interval time.Duration, attempts int, logger *slog.Logger) *Waiter {
	if interval <= 0 {
		interval = DefaultDetectionInterval
	}
	if attempts <= 0 {
		attempts = DefaultDetectionAttempts
	}
	return &Waiter{
		enumerator: enumerator,
		interval:   interval,
		attempts:   attempts,
		logger:     logger,
	}
}

// AwaitDetection polls the enumerator until a virtual connector shows up
// or the attempt budget is exhausted. It returns the number of attempts
// spent. Cancelling the context aborts the wait promptly with ctx.Err().
func (w *Waiter) AwaitDetection(ctx context.Context) (int, error) {
	for attempt := 1; attempt <= w.attempts; attempt++ {
		names, err := w.enumerator.ListConnectorNames()
		if err != nil {
			// Enumeration hiccups are retried within the same budget.
			w.logger.Debug("Connector enumeration failed", "attempt", attempt, "error", err)
		} else {
			for _, name := range names {
				if strings.Contains(name, kms.VirtualConnectorMarker) {
					w.logger.Debug("Virtual connector detected", "connector", name, "attempt", attempt)
					return attempt, nil
				}
			}
		}

		if attempt == w.attempts {
			break
		}

		select {
		case <-ctx.Done():
			w.logger.Debug("Detection wait cancelled", "attempt", attempt)
			return attempt, ctx.Err()
		case <-time.After(w.interval):
		}
	}

	return w.attempts, NewDisplayError(ErrCodeDetectionTimeout,
		"enumeration subsystem never observed the virtual connector", nil)
}
