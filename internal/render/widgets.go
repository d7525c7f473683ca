package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/opd-ai/go-vdrm/internal/ui"
)

// Widget geometry in pixels.
const (
	labelHeight = 18.0
	rowHeight   = 22.0
	boxSize     = 16.0
	boxGap      = 30.0
	knobRadius  = 7.0
	trackHeight = 4.0
)

// Rect is an axis-aligned rectangle in window pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Widget is a sidebar control bound to one document element. Pointer
// methods update the element and return the events a browser would fire.
type Widget interface {
	Role() ui.Role
	// Section is the container role whose visibility the widget follows.
	// Empty means always visible.
	Section() ui.Role
	Bounds() Rect
	SetBounds(r Rect)
	Height() float64
	Press(x, y float64) []ui.Event
	Drag(x, y float64) []ui.Event
	Release() []ui.Event
	Draw(screen *ebiten.Image, th Theme, tr TextRendererInterface)
}

type base struct {
	role    ui.Role
	section ui.Role
	label   string
	el      *ui.MemElement
	bounds  Rect
}

func (b *base) Role() ui.Role { return b.role }
func (b *base) Section() ui.Role { return b.section }
func (b *base) Bounds() Rect { return b.bounds }
func (b *base) SetBounds(r Rect) { b.bounds = r }
func (b *base) Drag(float64, float64) []ui.Event { return nil }
func (b *base) Release() []ui.Event { return nil }

// control is the area below the label.
func (b *base) control() Rect {
	r := b.bounds
	return Rect{X: r.X, Y: r.Y + labelHeight, W: r.W, H: r.H - labelHeight}
}

func (b *base) emit(t ui.EventType) []ui.Event {
	return []ui.Event{{Type: t, Target: b.role}}
}

func (b *base) ink(th Theme) color.RGBA {
	if b.el.Disabled() {
		return th.Muted
	}
	return th.Foreground
}

// Slider is a range input. Dragging fires input; releasing after a change
// fires change.
type Slider struct {
	base
	min, max float64
	dragging bool
	changed  bool
}

// NewSlider creates a slider over el with integer steps in [min, max].
func NewSlider(role, section ui.Role, label string, el *ui.MemElement, min, max float64) *Slider {
	return &Slider{base: base{role: role, section: section, label: label, el: el}, min: min, max: max}
}

func (s *Slider) Height() float64 { return labelHeight + rowHeight }

// Value returns the element's value, or the minimum if it is not a number.
func (s *Slider) Value() float64 {
	v, err := strconv.ParseFloat(s.el.Value(), 64)
	if err != nil || math.IsNaN(v) {
		return s.min
	}
	return v
}

func (s *Slider) valueAt(x float64) float64 {
	track := s.control()
	if track.W <= 0 {
		return s.min
	}
	t := max(0, min(1, (x-track.X)/track.W))
	return math.Round(s.min + t*(s.max-s.min))
}

func (s *Slider) set(x float64) []ui.Event {
	v := s.valueAt(x)
	if v == s.Value() && s.el.Value() != "" {
		return nil
	}
	s.el.SetNumber(v)
	s.changed = true
	return s.emit(ui.EventInput)
}

func (s *Slider) Press(x, _ float64) []ui.Event {
	if s.el.Disabled() {
		return nil
	}
	s.dragging = true
	return s.set(x)
}

func (s *Slider) Drag(x, _ float64) []ui.Event {
	if !s.dragging {
		return nil
	}
	return s.set(x)
}

func (s *Slider) Release() []ui.Event {
	if !s.dragging {
		return nil
	}
	s.dragging = false
	if !s.changed {
		return nil
	}
	s.changed = false
	return s.emit(ui.EventChange)
}

func (s *Slider) Draw(screen *ebiten.Image, th Theme, tr TextRendererInterface) {
	ink := s.ink(th)
	tr.DrawText(screen, fmt.Sprintf("%s  %s", s.label, s.el.Value()), s.bounds.X, s.bounds.Y, ink)

	track := s.control()
	cy := track.Y + track.H/2
	vector.DrawFilledRect(screen, float32(track.X), float32(cy-trackHeight/2), float32(track.W), trackHeight, th.Track, false)

	t := 0.0
	if s.max > s.min {
		t = max(0, min(1, (s.Value()-s.min)/(s.max-s.min)))
	}
	kx := track.X + t*track.W
	fill := th.Accent
	if s.el.Disabled() {
		fill = th.Muted
	}
	vector.DrawFilledRect(screen, float32(track.X), float32(cy-trackHeight/2), float32(kx-track.X), trackHeight, fill, false)
	vector.DrawFilledCircle(screen, float32(kx), float32(cy), knobRadius, fill, true)
}

// Checkbox toggles on press and fires change.
type Checkbox struct {
	base
}

// NewCheckbox creates a checkbox over el.
func NewCheckbox(role, section ui.Role, label string, el *ui.MemElement) *Checkbox {
	return &Checkbox{base: base{role: role, section: section, label: label, el: el}}
}

func (c *Checkbox) Height() float64 { return rowHeight }

func (c *Checkbox) Press(float64, float64) []ui.Event {
	if c.el.Disabled() {
		return nil
	}
	c.el.SetChecked(!c.el.Checked())
	return c.emit(ui.EventChange)
}

func (c *Checkbox) Draw(screen *ebiten.Image, th Theme, tr TextRendererInterface) {
	drawBox(screen, c.bounds.X, c.bounds.Y+(rowHeight-boxSize)/2, c.el.Checked(), th)
	tr.DrawText(screen, c.label, c.bounds.X+boxSize+8, c.bounds.Y+2, c.ink(th))
}

// Select cycles through its options on press and fires change.
type Select struct {
	base
	options []string
}

// NewSelect creates a select over el offering options.
func NewSelect(role, section ui.Role, label string, el *ui.MemElement, options ...string) *Select {
	return &Select{base: base{role: role, section: section, label: label, el: el}, options: options}
}

func (s *Select) Height() float64 { return labelHeight + rowHeight }

func (s *Select) Press(float64, float64) []ui.Event {
	if s.el.Disabled() || len(s.options) == 0 {
		return nil
	}
	next := s.options[0]
	for i, o := range s.options {
		if o == s.el.Value() {
			next = s.options[(i+1)%len(s.options)]
			break
		}
	}
	s.el.SetValue(next)
	return s.emit(ui.EventChange)
}

func (s *Select) Draw(screen *ebiten.Image, th Theme, tr TextRendererInterface) {
	tr.DrawText(screen, s.label, s.bounds.X, s.bounds.Y, s.ink(th))
	box := s.control()
	vector.StrokeRect(screen, float32(box.X), float32(box.Y), float32(box.W), float32(box.H), 1, th.Track, false)
	tr.DrawText(screen, s.el.Value()+"  >", box.X+6, box.Y+3, th.Foreground)
}

// Group is a row of checkboxes, one per screen. Toggling a box fires change
// on the group.
type Group struct {
	base
}

// NewGroup creates a checkbox row over el's children.
func NewGroup(role, section ui.Role, label string, el *ui.MemElement) *Group {
	return &Group{base: base{role: role, section: section, label: label, el: el}}
}

func (g *Group) Height() float64 { return labelHeight + rowHeight }

func (g *Group) box(i int) Rect {
	c := g.control()
	return Rect{X: c.X + float64(i)*(boxSize+boxGap), Y: c.Y + (c.H-boxSize)/2, W: boxSize + boxGap, H: boxSize}
}

func (g *Group) Press(x, _ float64) []ui.Event {
	for i := 0; i < g.el.Len(); i++ {
		b := g.box(i)
		if x >= b.X && x < b.X+b.W {
			child := g.el.Child(i)
			if child.Disabled() {
				return nil
			}
			child.SetChecked(!child.Checked())
			return g.emit(ui.EventChange)
		}
	}
	return nil
}

func (g *Group) Draw(screen *ebiten.Image, th Theme, tr TextRendererInterface) {
	tr.DrawText(screen, g.label, g.bounds.X, g.bounds.Y, g.ink(th))
	for i := 0; i < g.el.Len(); i++ {
		b := g.box(i)
		drawBox(screen, b.X, b.Y, g.el.Child(i).Checked(), th)
		tr.DrawText(screen, strconv.Itoa(i), b.X+boxSize+4, b.Y, th.Foreground)
	}
}

func drawBox(screen *ebiten.Image, x, y float64, checked bool, th Theme) {
	vector.StrokeRect(screen, float32(x), float32(y), boxSize, boxSize, 1.5, th.Foreground, false)
	if checked {
		vector.DrawFilledRect(screen, float32(x+3), float32(y+3), boxSize-6, boxSize-6, th.Accent, false)
	}
}
