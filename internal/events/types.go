package events

// Event type constants for kelindar/event.
const (
	TypeZoneStateChanged uint32 = iota + 1
	TypeThemeApplied
	TypeDeviceDetected
	TypeTransportError
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ZoneStateChangedEvent is published after a zone operation reaches the
// device. Used by the SSE stream and any reactive subsystem.
type ZoneStateChangedEvent struct {
	Zone      string `json:"zone" example:"AlienHead" doc:"Zone name"`
	Color     string `json:"color" example:"#ff0000" doc:"Applied color as hex RGB"`
	Effect    string `json:"effect" example:"static" doc:"Applied effect mode"`
	Enabled   bool   `json:"enabled" example:"true" doc:"Whether the zone is lit"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ZoneStateChangedEvent.
func (e ZoneStateChangedEvent) Type() uint32 { return TypeZoneStateChanged }

// ThemeAppliedEvent is published after a full theme has been sent to the
// controller.
type ThemeAppliedEvent struct {
	Theme     string `json:"theme" example:"default" doc:"Theme name"`
	States    int    `json:"states" example:"4" doc:"Number of power states the theme covered"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ThemeAppliedEvent.
func (e ThemeAppliedEvent) Type() uint32 { return TypeThemeApplied }

// DeviceDetectedEvent is published once at startup when probing finds a
// supported controller.
type DeviceDetectedEvent struct {
	Model     string `json:"model" example:"Alienware Alpha ASM100" doc:"Device model name"`
	Transport string `json:"transport" example:"sysfs" doc:"Transport variant in use"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceDetectedEvent.
func (e DeviceDetectedEvent) Type() uint32 { return TypeDeviceDetected }

// TransportErrorEvent is published when a packet write or read fails.
// The operation is never retried; subscribers decide what to do.
type TransportErrorEvent struct {
	Zone      string `json:"zone,omitempty" example:"AlienHead" doc:"Zone the failed operation targeted, if any"`
	Op        string `json:"op" example:"setColor" doc:"Failed operation"`
	Transport string `json:"transport" example:"usb" doc:"Transport variant"`
	Error     string `json:"error" doc:"Error description"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TransportErrorEvent.
func (e TransportErrorEvent) Type() uint32 { return TypeTransportError }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2026-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"controller" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
