package vdrm

import "time"

// Status represents the current state of a Viewer.
type Status struct {
	// Running indicates if the instance is currently active.
	Running bool
	// StartTime is when the instance was last started (zero if never started).
	StartTime time.Time
	// ConfigSource describes the configuration source (file path or "embedded").
	ConfigSource string
	// Variant is the panel variant: "range", "screens" or "combined".
	Variant string
	// Renderer names the installed renderer script, empty before Start.
	Renderer string
	// Mode is the current plot mode, "3d" or "2d".
	Mode string
	// StatusLine is the text of the panel's readout line.
	StatusLine string
	// FrameTime is the mean window frame time, zero when headless.
	FrameTime time.Duration
	// LastError is the most recent error encountered (nil if none).
	LastError error
}

// ErrorHandler is a callback for runtime errors.
// It is called asynchronously when errors occur during operation.
// Do not block in the handler; perform only quick, non-blocking operations.
type ErrorHandler func(err error)

// EventHandler is a callback for lifecycle events.
// It is called asynchronously; do not block in the handler.
type EventHandler func(event Event)

// Event represents a lifecycle event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
}

// EventType enumerates lifecycle event types.
// The underlying integer values are implementation details and should not
// be relied upon for serialization. Use the constant names for comparison.
type EventType int

const (
	// EventStarted is emitted when the instance starts successfully.
	EventStarted EventType = iota
	// EventStopped is emitted when the instance stops.
	EventStopped
	// EventRestarted is emitted after a successful restart.
	EventRestarted
	// EventConfigReloaded is emitted when configuration is reloaded.
	EventConfigReloaded
	// EventRendererReloaded is emitted when the renderer script is reloaded.
	EventRendererReloaded
	// EventError is emitted when a recoverable error occurs.
	EventError
)

// String returns a human-readable representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventRestarted:
		return "restarted"
	case EventConfigReloaded:
		return "config_reloaded"
	case EventRendererReloaded:
		return "renderer_reloaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
