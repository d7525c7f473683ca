// Package ui abstracts the host's user interface so the control panel can run
// against a browser DOM, a desktop window, or an in-memory document in tests.
// Elements are looked up by logical role rather than by markup.
package ui

import (
	"errors"

	"github.com/opd-ai/go-vdrm/internal/chart"
)

// ErrNoElement is returned when a listener targets a role the document lacks.
var ErrNoElement = errors.New("no element for role")

// Role names an element by what it does in the panel.
type Role string

// Element roles. The string values match the element ids used by the web page.
const (
	RoleWindow    Role = "window"
	RoleCanvas    Role = "canvas"
	RoleCoord     Role = "coord"
	RoleShowAll   Role = "showall"
	RoleAngle     Role = "angle"
	RoleAngle2D   Role = "angle_2d"
	RolePitch     Role = "pitch"
	RoleYaw       Role = "yaw"
	RoleMinAngle  Role = "min_angle"
	RoleMaxAngle  Role = "max_angle"
	RoleScreens3D Role = "screens_3d"
	RoleScreens2D Role = "screens_2d"
	RolePlotType  Role = "plot_type"
	RolePanel3D   Role = "panel_3d"
	RolePanel2D   Role = "panel_2d"
)

// EventType is a DOM-style event name.
type EventType string

// Event types the panel listens for.
const (
	EventChange    EventType = "change"
	EventInput     EventType = "input"
	EventResize    EventType = "resize"
	EventMouseMove EventType = "mousemove"
)

// Event is delivered to a Handler.
type Event struct {
	Type EventType
	// Target is the role of the element the event originated on. Pointer
	// events that hit no known element carry RoleWindow.
	Target Role
	// OffsetX and OffsetY are pointer coordinates relative to the target's
	// displayed box.
	OffsetX, OffsetY float64
}

// Handler receives events. It runs synchronously on the host's UI thread.
type Handler func(Event)

// Element is a form control, a text node or a container.
type Element interface {
	// Value returns the raw value of a slider, number input or select.
	Value() string
	// Checked reports whether a checkbox is checked.
	Checked() bool
	Disabled() bool
	SetDisabled(disabled bool)
	Text() string
	SetText(text string)
	Hidden() bool
	SetHidden(hidden bool)
	// Children returns child elements in document order.
	Children() []Element
}

// Canvas is the plot target. Its backing store is the renderer's logical
// coordinate space; the displayed size is what the pointer moves over.
type Canvas interface {
	chart.Surface
	SetSize(width, height int)
	DisplaySize() (width, height float64)
	SetDisplaySize(width, height float64)
	// ParentWidth returns the width of the element containing the canvas.
	ParentWidth() float64
}

// Document gives access to the host UI.
type Document interface {
	// Element returns the element with the given role, or nil.
	Element(role Role) Element
	// Canvas returns the plot canvas, or nil.
	Canvas() Canvas
	// Listen registers h for events of type ev on the element with role.
	// RoleWindow is always available and also receives events that bubble
	// up from any other element.
	Listen(role Role, ev EventType, h Handler) error
	// DevicePixelRatio returns the ratio of physical to CSS pixels.
	DevicePixelRatio() float64
}
