package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/magne4000/displayd/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for display lifecycle changes, device notifications, and connector resolution",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"display-created":      events.DisplayCreatedEvent{},
		"display-destroyed":    events.DisplayDestroyedEvent{},
		"display-degraded":     events.DisplayDegradedEvent{},
		"display-mode-changed": events.DisplayModeChangedEvent{},
		"device-power":         events.DevicePowerEvent{},
		"connector-resolved":   events.ConnectorResolvedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Per-connection event channel
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.DisplayCreatedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DisplayDestroyedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DisplayDegradedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DisplayModeChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DevicePowerEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ConnectorResolvedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Initial connection confirmation so clients know the stream is live
		if err := send.Data(events.ConnectorResolvedEvent{
			Requested: "system",
			Resolved:  "SSE connection established",
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit
					return
				}
			}
		}
	})
}
