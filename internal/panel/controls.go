package panel

import (
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// pitchYawScale maps the 0-100 slider range onto a unit range.
const pitchYawScale = 100.0

// Controls reads the control panel.
type Controls struct {
	ctx *Context
}

// NewControls returns the adapter for ctx.
func NewControls(ctx *Context) *Controls {
	return &Controls{ctx: ctx}
}

// Mode returns the mode selected on the plot-type selector, or ThreeD for
// panels without one.
func (c *Controls) Mode() Mode {
	if !c.ctx.Caps.ModeSwitch {
		return ThreeD
	}
	return ModeForPlotType(c.ctx.element(ui.RolePlotType).Value())
}

// Read builds Params from the current control values. In 3-D mode it also
// disables the angle control while "show all" is checked.
func (c *Controls) Read() Params {
	mode := c.Mode()
	if mode == TwoD {
		return c.read2D()
	}
	return c.read3D()
}

func (c *Controls) read3D() Params {
	caps := c.ctx.Caps
	showAll := c.ctx.element(ui.RoleShowAll).Checked()
	angle := c.ctx.element(ui.RoleAngle)
	angle.SetDisabled(showAll)

	p := Params{
		Mode:     ThreeD,
		RawAngle: parseNumber(angle.Value()),
		Pitch:    parseNumber(c.ctx.element(ui.RolePitch).Value()) / pitchYawScale,
		Yaw:      parseNumber(c.ctx.element(ui.RoleYaw).Value()) / pitchYawScale,
	}
	if !showAll {
		v := p.RawAngle
		p.Angle = &v
	}
	if caps.AngleRange {
		lo := parseNumber(c.ctx.element(ui.RoleMinAngle).Value())
		hi := parseNumber(c.ctx.element(ui.RoleMaxAngle).Value())
		p.MinAngle, p.MaxAngle = &lo, &hi
	}
	if caps.Screens {
		p.Screens = checkedIndices(c.ctx.element(ui.RoleScreens3D))
	}
	return p
}

// read2D uses the dedicated 2-D angle slider when the document has one.
// plot2d always takes a concrete angle, so "show all" does not apply.
func (c *Controls) read2D() Params {
	angle := c.ctx.element(ui.RoleAngle2D)
	if angle == nil {
		angle = c.ctx.element(ui.RoleAngle)
	}
	v := parseNumber(angle.Value())
	return Params{
		Mode:     TwoD,
		Angle:    &v,
		RawAngle: v,
		Screens:  checkedIndices(c.ctx.element(ui.RoleScreens2D)),
	}
}

// checkedIndices walks group's children in document order. The result is
// ascending and duplicate-free by construction.
func checkedIndices(group ui.Element) []int {
	out := []int{}
	if group == nil {
		return out
	}
	for i, child := range group.Children() {
		if child.Checked() {
			out = append(out, i)
		}
	}
	return out
}
