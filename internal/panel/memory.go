package panel

import (
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// Initial holds raw control values for a freshly built document, in the
// units the controls use (pitch and yaw on the 0-100 scale).
type Initial struct {
	Angle    float64
	Angle2D  float64
	Pitch    float64
	Yaw      float64
	MinAngle float64
	MaxAngle float64
	ShowAll  bool
	Screens  []int
	PlotType string

	CanvasWidth  int
	CanvasHeight int
	ParentWidth  float64
}

// NewMemoryDocument builds an in-memory document holding every element
// caps need.
func NewMemoryDocument(caps Capabilities, init Initial) *ui.Memory {
	doc := ui.NewMemory()
	doc.SetCanvas(ui.NewMemCanvas(init.CanvasWidth, init.CanvasHeight, init.ParentWidth))

	doc.Add(ui.RoleCoord, ui.NewText(""))
	doc.Add(ui.RoleShowAll, ui.NewCheckbox(init.ShowAll))
	doc.Add(ui.RoleAngle, ui.NewSlider(init.Angle))
	doc.Add(ui.RolePitch, ui.NewSlider(init.Pitch))
	doc.Add(ui.RoleYaw, ui.NewSlider(init.Yaw))

	if caps.AngleRange {
		doc.Add(ui.RoleMinAngle, ui.NewSlider(init.MinAngle))
		doc.Add(ui.RoleMaxAngle, ui.NewSlider(init.MaxAngle))
	}
	if caps.Screens {
		doc.Add(ui.RoleScreens3D, ui.NewGroup(caps.NumScreens, init.Screens...))
	}
	if caps.ModeSwitch {
		plotType := init.PlotType
		if plotType == "" {
			plotType = PlotType3D
		}
		doc.Add(ui.RolePlotType, ui.NewSelect(plotType))
		doc.Add(ui.RolePanel3D, ui.NewContainer())
		doc.Add(ui.RolePanel2D, ui.NewContainer())
		doc.Add(ui.RoleAngle2D, ui.NewSlider(init.Angle2D))
		doc.Add(ui.RoleScreens2D, ui.NewGroup(caps.NumScreens, init.Screens...))
	}
	return doc
}
