package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alienfx-go/alienfx/internal/events"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for zone changes, theme application, and transport errors",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"zone-state-changed": events.ZoneStateChangedEvent{},
		"theme-applied":      events.ThemeAppliedEvent{},
		"device-detected":    events.DeviceDetectedEvent{},
		"transport-error":    events.TransportErrorEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Create event channel for this connection
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.ZoneStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ThemeAppliedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DeviceDetectedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.TransportErrorEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Send initial connection confirmation
		if s.controller != nil {
			model := s.controller.Model()
			if err := send.Data(events.DeviceDetectedEvent{
				Model:     model.Name,
				Transport: string(s.controller.TransportKind()),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}

		// Keep connection alive and forward events
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
