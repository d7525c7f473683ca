package render

import (
	"testing"

	"github.com/opd-ai/go-vdrm/internal/panel"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

func newTestDocument(caps panel.Capabilities) *ui.Memory {
	return panel.NewMemoryDocument(caps, panel.Initial{
		Pitch:        50,
		Yaw:          30,
		MaxAngle:     512,
		Screens:      []int{0, 1, 2},
		PlotType:     panel.PlotType3D,
		CanvasWidth:  600,
		CanvasHeight: 400,
		ParentWidth:  750,
	})
}

func roles(ws []Widget) []ui.Role {
	out := make([]ui.Role, len(ws))
	for i, w := range ws {
		out[i] = w.Role()
	}
	return out
}

func TestNewLayoutWidgets(t *testing.T) {
	tests := []struct {
		name string
		caps panel.Capabilities
		want []ui.Role
	}{
		{
			name: "range",
			caps: panel.RangeCapabilities(),
			want: []ui.Role{ui.RoleShowAll, ui.RoleAngle, ui.RoleMinAngle, ui.RoleMaxAngle, ui.RolePitch, ui.RoleYaw},
		},
		{
			name: "screens",
			caps: panel.ScreensCapabilities(),
			want: []ui.Role{ui.RoleShowAll, ui.RoleAngle, ui.RolePitch, ui.RoleYaw, ui.RoleScreens3D},
		},
		{
			name: "combined",
			caps: panel.CombinedCapabilities(),
			want: []ui.Role{
				ui.RolePlotType, ui.RoleShowAll, ui.RoleAngle, ui.RolePitch, ui.RoleYaw,
				ui.RoleScreens3D, ui.RoleAngle2D, ui.RoleScreens2D,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roles(NewLayout(newTestDocument(tt.caps), 280).Widgets())
			if len(got) != len(tt.want) {
				t.Fatalf("widgets = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("widget %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLayoutArrangeFollowsSections(t *testing.T) {
	doc := newTestDocument(panel.CombinedCapabilities())
	doc.Get(ui.RolePanel2D).SetHidden(true)
	l := NewLayout(doc, 280)
	l.Arrange()

	visible := roles(l.Visible())
	for _, r := range visible {
		if r == ui.RoleAngle2D || r == ui.RoleScreens2D {
			t.Errorf("%q should be hidden in 3-D mode", r)
		}
	}
	if len(visible) != 6 {
		t.Errorf("visible = %v, want 6 widgets", visible)
	}

	if w := l.WidgetAt(20, margin+1); w == nil || w.Role() != ui.RolePlotType {
		t.Errorf("WidgetAt(top) = %v, want plot type", w)
	}
	showAllY := margin + labelHeight + rowHeight + widgetGap
	if w := l.WidgetAt(20, showAllY+1); w == nil || w.Role() != ui.RoleShowAll {
		t.Errorf("WidgetAt(show all) = %v, want showall", w)
	}
	if w := l.WidgetAt(600, 20); w != nil {
		t.Errorf("WidgetAt(canvas) = %q, want nil", w.Role())
	}

	doc.Get(ui.RolePanel2D).SetHidden(false)
	doc.Get(ui.RolePanel3D).SetHidden(true)
	l.Arrange()
	if w := l.WidgetAt(20, showAllY+1); w == nil || w.Role() != ui.RoleAngle2D {
		t.Errorf("in 2-D mode the 2-D angle should move up, got %v", w)
	}
}

func TestLayoutCanvasAndPointer(t *testing.T) {
	doc := newTestDocument(panel.ScreensCapabilities())
	l := NewLayout(doc, 280)
	l.Arrange()

	c := l.Canvas()
	if c.X != 280+margin || c.Y != margin || c.W != 600 || c.H != 400 {
		t.Errorf("Canvas() = %+v", c)
	}
	if s := l.Status(); s.Y != c.Y+c.H+statusOffset {
		t.Errorf("Status().Y = %v", s.Y)
	}

	ev := l.PointerEvent(c.X+150, c.Y+100)
	if ev.Target != ui.RoleCanvas || ev.OffsetX != 150 || ev.OffsetY != 100 || ev.Type != ui.EventMouseMove {
		t.Errorf("PointerEvent(inside) = %+v", ev)
	}
	if ev := l.PointerEvent(5, 5); ev.Target != ui.RoleWindow {
		t.Errorf("PointerEvent(outside) = %+v, want window", ev)
	}

	if got := l.ParentWidth(1000); got != 1000-280-2*margin {
		t.Errorf("ParentWidth(1000) = %v", got)
	}
	if got := l.ParentWidth(100); got != 0 {
		t.Errorf("ParentWidth(100) = %v, want 0", got)
	}
}
