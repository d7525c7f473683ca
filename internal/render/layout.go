package render

import (
	"github.com/opd-ai/go-vdrm/internal/panel"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// Layout geometry in pixels.
const (
	margin       = 16.0
	widgetGap    = 12.0
	statusOffset = 10.0
)

// totalAngles is the number of mirror positions per revolution.
const totalAngles = 512

// Layout places the sidebar widgets and the canvas.
type Layout struct {
	doc     *ui.Memory
	sidebar float64
	widgets []Widget
	canvas  Rect
	status  Rect
}

// NewLayout creates widgets for every control present in doc.
func NewLayout(doc *ui.Memory, sidebarWidth float64) *Layout {
	l := &Layout{doc: doc, sidebar: sidebarWidth}

	slider := func(role, section ui.Role, label string, min, max float64) {
		if el := doc.Get(role); el != nil {
			l.widgets = append(l.widgets, NewSlider(role, section, label, el, min, max))
		}
	}
	group := func(role, section ui.Role) {
		if el := doc.Get(role); el != nil {
			l.widgets = append(l.widgets, NewGroup(role, section, "Screens", el))
		}
	}

	if el := doc.Get(ui.RolePlotType); el != nil {
		l.widgets = append(l.widgets, NewSelect(ui.RolePlotType, "", "Plot type", el, panel.PlotType3D, panel.PlotType2D))
	}
	if el := doc.Get(ui.RoleShowAll); el != nil {
		l.widgets = append(l.widgets, NewCheckbox(ui.RoleShowAll, ui.RolePanel3D, "Show all angles", el))
	}
	slider(ui.RoleAngle, ui.RolePanel3D, "Angle", 0, totalAngles-1)
	slider(ui.RoleMinAngle, ui.RolePanel3D, "Min angle", 0, totalAngles)
	slider(ui.RoleMaxAngle, ui.RolePanel3D, "Max angle", 0, totalAngles)
	slider(ui.RolePitch, ui.RolePanel3D, "Pitch", 0, 100)
	slider(ui.RoleYaw, ui.RolePanel3D, "Yaw", 0, 100)
	group(ui.RoleScreens3D, ui.RolePanel3D)
	slider(ui.RoleAngle2D, ui.RolePanel2D, "Angle", 0, totalAngles-1)
	group(ui.RoleScreens2D, ui.RolePanel2D)
	return l
}

// Widgets returns every widget in sidebar order.
func (l *Layout) Widgets() []Widget {
	return l.widgets
}

// Visible returns the widgets whose section is shown.
func (l *Layout) Visible() []Widget {
	out := make([]Widget, 0, len(l.widgets))
	for _, w := range l.widgets {
		if l.visible(w) {
			out = append(out, w)
		}
	}
	return out
}

func (l *Layout) visible(w Widget) bool {
	if w.Section() == "" {
		return true
	}
	el := l.doc.Get(w.Section())
	return el == nil || !el.Hidden()
}

// SidebarWidth returns the width of the control column.
func (l *Layout) SidebarWidth() float64 {
	return l.sidebar
}

// ParentWidth is the width available to the canvas in a window of width.
func (l *Layout) ParentWidth(width int) float64 {
	return max(0, float64(width)-l.sidebar-2*margin)
}

// Arrange stacks the visible widgets and places the canvas at its current
// displayed size.
func (l *Layout) Arrange() {
	y := margin
	for _, w := range l.widgets {
		if !l.visible(w) {
			w.SetBounds(Rect{})
			continue
		}
		h := w.Height()
		w.SetBounds(Rect{X: margin, Y: y, W: l.sidebar - 2*margin, H: h})
		y += h + widgetGap
	}

	l.canvas = Rect{X: l.sidebar + margin, Y: margin}
	if c := l.doc.MemCanvas(); c != nil {
		l.canvas.W, l.canvas.H = c.DisplaySize()
	}
	l.status = Rect{X: l.canvas.X, Y: l.canvas.Y + l.canvas.H + statusOffset, W: l.canvas.W, H: labelHeight}
}

// Canvas returns the displayed canvas rectangle.
func (l *Layout) Canvas() Rect {
	return l.canvas
}

// Status returns where the readout line is drawn.
func (l *Layout) Status() Rect {
	return l.status
}

// WidgetAt returns the visible widget under (x, y), or nil.
func (l *Layout) WidgetAt(x, y float64) Widget {
	for _, w := range l.widgets {
		if l.visible(w) && w.Bounds().Contains(x, y) {
			return w
		}
	}
	return nil
}

// PointerEvent builds the mousemove event for a pointer at (x, y). Over
// the canvas it targets the canvas with offsets into its displayed box.
func (l *Layout) PointerEvent(x, y float64) ui.Event {
	if l.canvas.Contains(x, y) {
		return ui.Event{Type: ui.EventMouseMove, Target: ui.RoleCanvas, OffsetX: x - l.canvas.X, OffsetY: y - l.canvas.Y}
	}
	return ui.Event{Type: ui.EventMouseMove, Target: ui.RoleWindow}
}
