//go:build js && wasm

package web

import (
	"fmt"
	"strconv"
	"syscall/js"

	"github.com/opd-ai/go-vdrm/internal/ui"
)

// CanvasID is the id of the plot canvas element.
const CanvasID = "canvas"

// Document is a ui.Document over the browser page.
type Document struct {
	doc   js.Value
	win   js.Value
	funcs []js.Func
}

var _ ui.Document = (*Document)(nil)

// NewDocument returns the document of the current page.
func NewDocument() *Document {
	return &Document{
		doc: js.Global().Get("document"),
		win: js.Global(),
	}
}

func (d *Document) byID(id string) (js.Value, bool) {
	v := d.doc.Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return js.Value{}, false
	}
	return v, true
}

// Element implements ui.Document.
func (d *Document) Element(role ui.Role) ui.Element {
	v, ok := d.byID(string(role))
	if !ok {
		return nil
	}
	return &Element{v: v}
}

// Canvas implements ui.Document.
func (d *Document) Canvas() ui.Canvas {
	v, ok := d.byID(CanvasID)
	if !ok {
		return nil
	}
	return &Canvas{v: v}
}

// Listen implements ui.Document. Window listeners see events from every
// element; their Target is the originating element's id.
func (d *Document) Listen(role ui.Role, ev ui.EventType, h ui.Handler) error {
	target := d.win
	if role != ui.RoleWindow {
		id := string(role)
		if role == ui.RoleCanvas {
			id = CanvasID
		}
		v, ok := d.byID(id)
		if !ok {
			return fmt.Errorf("listen %s on %q: %w", ev, role, ui.ErrNoElement)
		}
		target = v
	}

	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		e := ui.Event{Type: ev, Target: role}
		if len(args) > 0 {
			e = translate(ev, role, args[0])
		}
		h(e)
		return nil
	})
	d.funcs = append(d.funcs, fn)
	target.Call("addEventListener", string(ev), fn)
	return nil
}

// translate converts a DOM event. A listener on the window reports the
// element the event came from.
func translate(ev ui.EventType, role ui.Role, e js.Value) ui.Event {
	out := ui.Event{Type: ev, Target: role}
	if role == ui.RoleWindow {
		out.Target = ui.RoleWindow
		if t := e.Get("target"); t.Truthy() {
			if id := t.Get("id"); id.Type() == js.TypeString && id.String() != "" {
				out.Target = ui.Role(id.String())
			}
		}
	}
	if x := e.Get("offsetX"); x.Type() == js.TypeNumber {
		out.OffsetX = x.Float()
		out.OffsetY = e.Get("offsetY").Float()
	}
	return out
}

// DevicePixelRatio implements ui.Document.
func (d *Document) DevicePixelRatio() float64 {
	if v := d.win.Get("devicePixelRatio"); v.Type() == js.TypeNumber && v.Float() > 0 {
		return v.Float()
	}
	return 1
}

// Release frees the callbacks registered by Listen. The document must not be
// used afterwards.
func (d *Document) Release() {
	for _, fn := range d.funcs {
		fn.Release()
	}
	d.funcs = nil
}

// Element is a DOM element.
type Element struct {
	v js.Value
}

// Value returns the element's JS value.
func (e *Element) Value() string {
	v := e.v.Get("value")
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func (e *Element) Checked() bool  { return e.v.Get("checked").Truthy() }
func (e *Element) Disabled() bool { return e.v.Get("disabled").Truthy() }

func (e *Element) SetDisabled(disabled bool) { e.v.Set("disabled", disabled) }

func (e *Element) Text() string {
	v := e.v.Get("innerText")
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func (e *Element) SetText(text string) { e.v.Set("innerText", text) }

// Hidden reports whether the element's inline style hides it.
func (e *Element) Hidden() bool {
	return e.v.Get("style").Get("display").String() == "none"
}

func (e *Element) SetHidden(hidden bool) {
	display := ""
	if hidden {
		display = "none"
	}
	e.v.Get("style").Set("display", display)
}

// Children returns the element's input descendants, so a screen group can
// wrap its checkboxes in labels.
func (e *Element) Children() []ui.Element {
	inputs := e.v.Call("querySelectorAll", "input")
	n := inputs.Length()
	out := make([]ui.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Element{v: inputs.Index(i)})
	}
	return out
}

// Canvas is the page's canvas element.
type Canvas struct {
	v js.Value
}

// JSValue returns the underlying HTMLCanvasElement.
func (c *Canvas) JSValue() js.Value { return c.v }

func (c *Canvas) Size() (int, int) {
	return c.v.Get("width").Int(), c.v.Get("height").Int()
}

func (c *Canvas) SetSize(width, height int) {
	c.v.Set("width", width)
	c.v.Set("height", height)
}

// DisplaySize returns the rendered box from getBoundingClientRect.
func (c *Canvas) DisplaySize() (float64, float64) {
	r := c.v.Call("getBoundingClientRect")
	return r.Get("width").Float(), r.Get("height").Float()
}

func (c *Canvas) SetDisplaySize(width, height float64) {
	style := c.v.Get("style")
	style.Set("width", px(width))
	style.Set("height", px(height))
}

func (c *Canvas) ParentWidth() float64 {
	parent := c.v.Get("parentNode")
	if !parent.Truthy() {
		return 0
	}
	return parent.Get("offsetWidth").Float()
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
