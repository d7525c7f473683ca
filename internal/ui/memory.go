package ui

import (
	"fmt"
	"image"
	"strconv"
	"sync"

	"github.com/opd-ai/go-vdrm/internal/chart"
)

type listenKey struct {
	role Role
	ev   EventType
}

// Memory is an in-memory Document. Hosts that draw their own widgets keep
// their state in one, and tests use it in place of a browser.
type Memory struct {
	mu       sync.RWMutex
	elements map[Role]*MemElement
	canvas   *MemCanvas
	handlers map[listenKey][]Handler
	dpr      float64
}

// NewMemory creates an empty document with a device pixel ratio of 1.
func NewMemory() *Memory {
	return &Memory{
		elements: make(map[Role]*MemElement),
		handlers: make(map[listenKey][]Handler),
		dpr:      1,
	}
}

// Add registers el under role and returns it.
func (m *Memory) Add(role Role, el *MemElement) *MemElement {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements[role] = el
	return el
}

// Get returns the concrete element for role, or nil.
func (m *Memory) Get(role Role) *MemElement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.elements[role]
}

// SetCanvas installs the plot canvas.
func (m *Memory) SetCanvas(c *MemCanvas) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canvas = c
}

// MemCanvas returns the concrete canvas, or nil.
func (m *Memory) MemCanvas() *MemCanvas {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.canvas
}

// SetDevicePixelRatio changes the value returned by DevicePixelRatio.
func (m *Memory) SetDevicePixelRatio(dpr float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dpr = dpr
}

// Element implements Document.
func (m *Memory) Element(role Role) Element {
	if el := m.Get(role); el != nil {
		return el
	}
	return nil
}

// Canvas implements Document.
func (m *Memory) Canvas() Canvas {
	if c := m.MemCanvas(); c != nil {
		return c
	}
	return nil
}

// DevicePixelRatio implements Document.
func (m *Memory) DevicePixelRatio() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dpr
}

// Listen implements Document.
func (m *Memory) Listen(role Role, ev EventType, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if role != RoleWindow && m.elements[role] == nil && !(role == RoleCanvas && m.canvas != nil) {
		return fmt.Errorf("listen %s on %q: %w", ev, role, ErrNoElement)
	}
	key := listenKey{role: role, ev: ev}
	m.handlers[key] = append(m.handlers[key], h)
	return nil
}

// Dispatch delivers ev to the handlers on its target, then to the window
// handlers. Handlers run on the calling goroutine.
func (m *Memory) Dispatch(ev Event) {
	if ev.Target == "" {
		ev.Target = RoleWindow
	}

	m.mu.RLock()
	var hs []Handler
	hs = append(hs, m.handlers[listenKey{role: ev.Target, ev: ev.Type}]...)
	if ev.Target != RoleWindow {
		hs = append(hs, m.handlers[listenKey{role: RoleWindow, ev: ev.Type}]...)
	}
	m.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// MemElement is the concrete element type of a Memory document.
type MemElement struct {
	mu       sync.RWMutex
	value    string
	checked  bool
	disabled bool
	hidden   bool
	text     string
	children []*MemElement
}

// NewSlider returns a numeric control holding v.
func NewSlider(v float64) *MemElement {
	return &MemElement{value: strconv.FormatFloat(v, 'f', -1, 64)}
}

// NewSelect returns a select control holding value.
func NewSelect(value string) *MemElement {
	return &MemElement{value: value}
}

// NewCheckbox returns a checkbox.
func NewCheckbox(checked bool) *MemElement {
	return &MemElement{checked: checked}
}

// NewText returns a text node.
func NewText(text string) *MemElement {
	return &MemElement{text: text}
}

// NewGroup returns a container of n checkboxes. Indices listed in checked
// start out checked.
func NewGroup(n int, checked ...int) *MemElement {
	g := &MemElement{children: make([]*MemElement, n)}
	for i := range g.children {
		g.children[i] = NewCheckbox(false)
	}
	for _, i := range checked {
		if i >= 0 && i < n {
			g.children[i].checked = true
		}
	}
	return g
}

// NewContainer returns an empty container.
func NewContainer() *MemElement {
	return &MemElement{}
}

func (e *MemElement) Value() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.value
}

// SetValue sets the raw value.
func (e *MemElement) SetValue(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
}

// SetNumber sets the value to the shortest representation of v.
func (e *MemElement) SetNumber(v float64) {
	e.SetValue(strconv.FormatFloat(v, 'f', -1, 64))
}

func (e *MemElement) Checked() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checked
}

// SetChecked sets the checked state.
func (e *MemElement) SetChecked(checked bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checked = checked
}

func (e *MemElement) Disabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.disabled
}

func (e *MemElement) SetDisabled(disabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabled = disabled
}

func (e *MemElement) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

func (e *MemElement) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

func (e *MemElement) Hidden() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hidden
}

func (e *MemElement) SetHidden(hidden bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = hidden
}

func (e *MemElement) Children() []Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Element, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

// Child returns the i-th child, or nil.
func (e *MemElement) Child(i int) *MemElement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Len returns the number of children.
func (e *MemElement) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.children)
}

var _ chart.RasterSurface = (*MemCanvas)(nil)

// MemCanvas is an in-memory canvas with an RGBA backing store.
type MemCanvas struct {
	mu          sync.RWMutex
	width       int
	height      int
	displayW    float64
	displayH    float64
	parentWidth float64
	img         *image.RGBA
}

// NewMemCanvas returns a canvas whose backing store and displayed size are
// both width x height, inside a parent of parentWidth.
func NewMemCanvas(width, height int, parentWidth float64) *MemCanvas {
	return &MemCanvas{
		width:       width,
		height:      height,
		displayW:    float64(width),
		displayH:    float64(height),
		parentWidth: parentWidth,
	}
}

func (c *MemCanvas) Size() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width, c.height
}

func (c *MemCanvas) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

func (c *MemCanvas) DisplaySize() (float64, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.displayW, c.displayH
}

func (c *MemCanvas) SetDisplaySize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayW, c.displayH = width, height
}

func (c *MemCanvas) ParentWidth() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parentWidth
}

// SetParentWidth changes the width reported by ParentWidth.
func (c *MemCanvas) SetParentWidth(w float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parentWidth = w
}

// Image returns the backing store, reallocating it when the size changed.
// Like a DOM canvas, resizing clears it.
func (c *MemCanvas) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, h := max(c.width, 0), max(c.height, 0)
	if c.img == nil || c.img.Bounds().Dx() != w || c.img.Bounds().Dy() != h {
		c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return c.img
}
