package render

import (
	"testing"

	"github.com/opd-ai/go-vdrm/internal/ui"
)

var testBounds = Rect{X: 16, Y: 0, W: 248, H: labelHeight + rowHeight}

func eventTypes(events []ui.Event) []ui.EventType {
	out := make([]ui.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestSliderDrag(t *testing.T) {
	el := ui.NewSlider(50)
	s := NewSlider(ui.RolePitch, ui.RolePanel3D, "Pitch", el, 0, 100)
	s.SetBounds(testBounds)

	steps := []struct {
		name      string
		act       func() []ui.Event
		wantValue string
		want      []ui.EventType
	}{
		{"press at a quarter", func() []ui.Event { return s.Press(16+62, 30) }, "25", []ui.EventType{ui.EventInput}},
		{"drag past the end", func() []ui.Event { return s.Drag(500, 30) }, "100", []ui.EventType{ui.EventInput}},
		{"drag without change", func() []ui.Event { return s.Drag(600, 30) }, "100", []ui.EventType{}},
		{"release", s.Release, "100", []ui.EventType{ui.EventChange}},
		{"second release", s.Release, "100", []ui.EventType{}},
		{"drag after release", func() []ui.Event { return s.Drag(16, 30) }, "100", []ui.EventType{}},
	}
	for _, st := range steps {
		events := st.act()
		if got := eventTypes(events); len(got) != len(st.want) || (len(got) > 0 && got[0] != st.want[0]) {
			t.Errorf("%s: events = %v, want %v", st.name, got, st.want)
		}
		for _, ev := range events {
			if ev.Target != ui.RolePitch {
				t.Errorf("%s: target = %q, want pitch", st.name, ev.Target)
			}
		}
		if el.Value() != st.wantValue {
			t.Errorf("%s: value = %q, want %q", st.name, el.Value(), st.wantValue)
		}
	}
}

func TestSliderPressWithoutMoveFiresNoChange(t *testing.T) {
	el := ui.NewSlider(0)
	s := NewSlider(ui.RoleYaw, "", "Yaw", el, 0, 100)
	s.SetBounds(testBounds)

	if events := s.Press(16, 30); len(events) != 0 {
		t.Errorf("Press() on the current value = %v, want no events", events)
	}
	if events := s.Release(); len(events) != 0 {
		t.Errorf("Release() without change = %v, want no events", events)
	}
}

func TestSliderDisabled(t *testing.T) {
	el := ui.NewSlider(10)
	el.SetDisabled(true)
	s := NewSlider(ui.RoleAngle, "", "Angle", el, 0, 511)
	s.SetBounds(testBounds)

	if events := s.Press(200, 30); events != nil {
		t.Errorf("Press() on a disabled slider = %v", events)
	}
	if el.Value() != "10" {
		t.Errorf("value = %q, want unchanged", el.Value())
	}
}

func TestSliderValueFallsBackToMin(t *testing.T) {
	el := ui.NewSlider(0)
	el.SetValue("abc")
	s := NewSlider(ui.RoleAngle, "", "Angle", el, 5, 10)
	if got := s.Value(); got != 5 {
		t.Errorf("Value() = %v, want 5", got)
	}
}

func TestCheckbox(t *testing.T) {
	el := ui.NewCheckbox(false)
	c := NewCheckbox(ui.RoleShowAll, ui.RolePanel3D, "Show all", el)

	events := c.Press(0, 0)
	if len(events) != 1 || events[0].Type != ui.EventChange || events[0].Target != ui.RoleShowAll {
		t.Fatalf("Press() = %v, want one change on showall", events)
	}
	if !el.Checked() {
		t.Error("Press() did not check the box")
	}
	c.Press(0, 0)
	if el.Checked() {
		t.Error("second Press() did not uncheck the box")
	}

	el.SetDisabled(true)
	if events := c.Press(0, 0); events != nil {
		t.Errorf("Press() on a disabled checkbox = %v", events)
	}
}

func TestSelectCycles(t *testing.T) {
	el := ui.NewSelect("3d-plot")
	s := NewSelect(ui.RolePlotType, "", "Plot type", el, "3d-plot", "2d-plot")

	for _, want := range []string{"2d-plot", "3d-plot", "2d-plot"} {
		events := s.Press(0, 0)
		if len(events) != 1 || events[0].Type != ui.EventChange {
			t.Fatalf("Press() = %v, want one change", events)
		}
		if el.Value() != want {
			t.Errorf("value = %q, want %q", el.Value(), want)
		}
	}

	el.SetValue("unknown")
	s.Press(0, 0)
	if el.Value() != "3d-plot" {
		t.Errorf("unknown value should restart at the first option, got %q", el.Value())
	}
}

func TestGroupTogglesBoxUnderPointer(t *testing.T) {
	el := ui.NewGroup(3, 0)
	g := NewGroup(ui.RoleScreens3D, ui.RolePanel3D, "Screens", el)
	g.SetBounds(testBounds)

	x := g.box(1).X + 2
	events := g.Press(x, 30)
	if len(events) != 1 || events[0].Target != ui.RoleScreens3D || events[0].Type != ui.EventChange {
		t.Fatalf("Press() = %v, want one change on the group", events)
	}
	if !el.Child(1).Checked() {
		t.Error("box 1 should be checked")
	}
	if !el.Child(0).Checked() || el.Child(2).Checked() {
		t.Error("other boxes changed")
	}

	if events := g.Press(1000, 30); events != nil {
		t.Errorf("Press() right of the boxes = %v, want nil", events)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{14.9, 14.9, true},
		{15, 12, false},
		{9, 12, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
