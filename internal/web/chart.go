//go:build js && wasm

package web

import (
	"fmt"
	"syscall/js"

	"github.com/opd-ai/go-vdrm/internal/chart"
)

// jsSurface is a surface backed by a DOM canvas.
type jsSurface interface {
	chart.Surface
	JSValue() js.Value
}

// Chart adapts a JavaScript plotting object exposing plot2d, plot3d and an
// optional coord to chart.Renderer. Arguments are passed positionally:
//
//	plot2d(canvas, angle, screens)
//	plot3d(canvas, angle|null, pitch, yaw, [min_angle, max_angle], [screens])
//	coord(x, y) -> {x, y} | null
type Chart struct {
	v js.Value
}

var _ chart.Renderer = (*Chart)(nil)

// NewChart wraps v. It fails if v lacks plot2d or plot3d.
func NewChart(v js.Value) (*Chart, error) {
	if !v.Truthy() {
		return nil, chart.ErrNilRenderer
	}
	for _, name := range []string{"plot2d", "plot3d"} {
		if v.Get(name).Type() != js.TypeFunction {
			return nil, fmt.Errorf("chart has no %s function", name)
		}
	}
	return &Chart{v: v}, nil
}

func canvasOf(s chart.Surface) (js.Value, error) {
	c, ok := s.(jsSurface)
	if !ok {
		return js.Value{}, fmt.Errorf("%T: %w", s, chart.ErrUnsupportedSurface)
	}
	return c.JSValue(), nil
}

func screenArray(screens []int) js.Value {
	arr := js.Global().Get("Array").New(len(screens))
	for i, s := range screens {
		arr.SetIndex(i, s)
	}
	return arr
}

// call invokes a chart method and turns a thrown JS exception into an error.
func (c *Chart) call(name string, args ...any) (result js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = fmt.Errorf("%s: %w", name, jsErr)
				return
			}
			err = fmt.Errorf("%s: %v", name, r)
		}
	}()
	return c.v.Call(name, args...), nil
}

// Plot2D implements chart.Renderer.
func (c *Chart) Plot2D(s chart.Surface, angle float64, screens []int) error {
	canvas, err := canvasOf(s)
	if err != nil {
		return err
	}
	_, err = c.call("plot2d", canvas, angle, screenArray(screens))
	return err
}

// Plot3D implements chart.Renderer.
func (c *Chart) Plot3D(s chart.Surface, args chart.Plot3DArgs) error {
	canvas, err := canvasOf(s)
	if err != nil {
		return err
	}
	var angle any = js.Null()
	if args.Angle != nil {
		angle = *args.Angle
	}
	call := []any{canvas, angle, args.Pitch, args.Yaw}
	if args.MinAngle != nil && args.MaxAngle != nil {
		call = append(call, *args.MinAngle, *args.MaxAngle)
	}
	if args.Screens != nil {
		call = append(call, screenArray(args.Screens))
	}
	_, err = c.call("plot3d", call...)
	return err
}

// Coord implements chart.Renderer. Charts without coord never report a hit.
func (c *Chart) Coord(x, y float64) (chart.DataPoint, bool) {
	if c.v.Get("coord").Type() != js.TypeFunction {
		return chart.DataPoint{}, false
	}
	res, err := c.call("coord", x, y)
	if err != nil || !res.Truthy() {
		return chart.DataPoint{}, false
	}
	px, py := res.Get("x"), res.Get("y")
	if px.Type() != js.TypeNumber || py.Type() != js.TypeNumber {
		return chart.DataPoint{}, false
	}
	return chart.DataPoint{X: px.Float(), Y: py.Float()}, true
}
