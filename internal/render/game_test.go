//go:build !noebiten

package render

import (
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-vdrm/internal/panel"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// mockTextRenderer implements TextRendererInterface for testing
type mockTextRenderer struct {
	drawn []string
}

func (m *mockTextRenderer) DrawText(screen *ebiten.Image, textStr string, x, y float64, clr color.RGBA) {
	m.drawn = append(m.drawn, textStr)
}

func (m *mockTextRenderer) MeasureText(textStr string) (width, height float64) {
	return float64(len(textStr)) * 8, 16
}

func (m *mockTextRenderer) LineHeight() float64 { return 16 }

type recorder struct {
	events []ui.Event
}

func (r *recorder) listen(t *testing.T, doc *ui.Memory, role ui.Role, types ...ui.EventType) {
	t.Helper()
	for _, ev := range types {
		if err := doc.Listen(role, ev, func(e ui.Event) { r.events = append(r.events, e) }); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestGame(t *testing.T, caps panel.Capabilities) (*Game, *ui.Memory) {
	t.Helper()
	doc := newTestDocument(caps)
	g := NewGameWithRenderer(DefaultConfig(), doc, &mockTextRenderer{})
	g.PanelLayout().Arrange()
	return g, doc
}

func TestGamePointerMoveOverCanvas(t *testing.T) {
	g, doc := newTestGame(t, panel.ScreensCapabilities())
	var rec recorder
	rec.listen(t, doc, ui.RoleWindow, ui.EventMouseMove)

	c := g.PanelLayout().Canvas()
	g.pointer(c.X+10, c.Y+20, false)
	g.pointer(c.X+10, c.Y+20, false)
	g.pointer(2, 2, false)

	if len(rec.events) != 2 {
		t.Fatalf("events = %+v, want 2 moves", rec.events)
	}
	if ev := rec.events[0]; ev.Target != ui.RoleCanvas || ev.OffsetX != 10 || ev.OffsetY != 20 {
		t.Errorf("first move = %+v", ev)
	}
	if ev := rec.events[1]; ev.Target != ui.RoleWindow {
		t.Errorf("second move = %+v, want window", ev)
	}
}

func TestGamePointerDrivesWidgets(t *testing.T) {
	g, doc := newTestGame(t, panel.ScreensCapabilities())
	var rec recorder
	rec.listen(t, doc, ui.RoleShowAll, ui.EventChange)
	rec.listen(t, doc, ui.RolePitch, ui.EventInput, ui.EventChange)

	var showAll, pitch Widget
	for _, w := range g.PanelLayout().Widgets() {
		switch w.Role() {
		case ui.RoleShowAll:
			showAll = w
		case ui.RolePitch:
			pitch = w
		}
	}

	b := showAll.Bounds()
	g.pointer(b.X+2, b.Y+2, true)
	g.pointer(b.X+2, b.Y+2, true)
	g.pointer(b.X+2, b.Y+2, false)
	if !doc.Get(ui.RoleShowAll).Checked() {
		t.Error("clicking show all should check it")
	}

	b = pitch.Bounds()
	y := b.Y + labelHeight + 4
	g.pointer(b.X, y, true)
	g.pointer(b.X+b.W, y, true)
	g.pointer(b.X+b.W, y, false)
	if got := doc.Get(ui.RolePitch).Value(); got != "100" {
		t.Errorf("pitch = %q, want 100 after dragging to the end", got)
	}

	var types []string
	for _, ev := range rec.events {
		types = append(types, string(ev.Target)+":"+string(ev.Type))
	}
	want := "showall:change pitch:input pitch:input pitch:change"
	if got := strings.Join(types, " "); got != want {
		t.Errorf("events = %q, want %q", got, want)
	}
}

func TestGamePressOutsideWidgetsAndDragIn(t *testing.T) {
	g, doc := newTestGame(t, panel.ScreensCapabilities())
	var rec recorder
	rec.listen(t, doc, ui.RoleShowAll, ui.EventChange)

	var b Rect
	for _, w := range g.PanelLayout().Widgets() {
		if w.Role() == ui.RoleShowAll {
			b = w.Bounds()
		}
	}
	g.pointer(b.X+b.W+100, b.Y, true)
	g.pointer(b.X+2, b.Y+2, true)
	g.pointer(b.X+2, b.Y+2, false)
	if len(rec.events) != 0 {
		t.Errorf("dragging onto a checkbox should not toggle it: %+v", rec.events)
	}
}

func TestGameLayoutDispatchesResize(t *testing.T) {
	g, doc := newTestGame(t, panel.ScreensCapabilities())
	var rec recorder
	rec.listen(t, doc, ui.RoleWindow, ui.EventResize)

	if w, h := g.Layout(1200, 800); w != 1200 || h != 800 {
		t.Errorf("Layout() = %d, %d", w, h)
	}
	g.applyResize()
	g.applyResize()

	if len(rec.events) != 1 {
		t.Fatalf("resize events = %d, want 1", len(rec.events))
	}
	if got, want := doc.MemCanvas().ParentWidth(), 1200-DefaultConfig().SidebarWidth-2*margin; got != want {
		t.Errorf("ParentWidth = %v, want %v", got, want)
	}

	g.Layout(1200, 800)
	g.applyResize()
	if len(rec.events) != 1 {
		t.Error("an unchanged size should not fire resize")
	}
}

func TestGamePost(t *testing.T) {
	g, _ := newTestGame(t, panel.ScreensCapabilities())
	var reported []error
	g.SetErrorHandler(func(err error) { reported = append(reported, err) })

	ran := 0
	if !g.Post(func() { ran++ }) {
		t.Fatal("Post() = false on an empty queue")
	}
	g.Post(func() { panic("boom") })
	g.Post(func() { ran++ })
	g.runTasks()

	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
	if len(reported) != 1 || !strings.Contains(reported[0].Error(), "boom") {
		t.Errorf("reported = %v, want the panic", reported)
	}

	for i := 0; i < taskQueueSize; i++ {
		g.Post(func() {})
	}
	if g.Post(func() {}) {
		t.Error("Post() = true on a full queue")
	}
}

func TestGameUpdateStopsOnCancel(t *testing.T) {
	g, _ := newTestGame(t, panel.ScreensCapabilities())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g.SetContext(ctx)
	if err := g.Update(); err != ErrGameTerminated {
		t.Errorf("Update() = %v, want ErrGameTerminated", err)
	}
	if g.IsRunning() {
		t.Error("IsRunning() = true before Run")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"zero height", func(c *Config) { c.Height = 0 }, true},
		{"sidebar too wide", func(c *Config) { c.SidebarWidth = float64(c.Width) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestThemeWithColors(t *testing.T) {
	th, err := DefaultTheme().WithColors("#000000", "white", "")
	if err != nil {
		t.Fatalf("WithColors() error = %v", err)
	}
	if th.Background != (color.RGBA{A: 255}) || th.Foreground != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("theme = %+v", th)
	}
	if th.Accent != DefaultTheme().Accent {
		t.Error("empty accent should keep the default")
	}
	if _, err := DefaultTheme().WithColors("nope", "", ""); err == nil {
		t.Error("expected an error for an unknown color")
	}
}
