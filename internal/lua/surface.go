package lua

import (
	"fmt"
	"image/color"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-vdrm/internal/render"
)

// defaultLineWidth is the stroke width a fresh surface table starts with.
const defaultLineWidth = 1.0

// surface exposes a Painter to Lua as a table of functions. Every function
// accepts the table itself as an optional first argument, so both
// surface:line(...) and surface.line(...) work.
type surface struct {
	painter   *render.Painter
	lineWidth float64
}

func newSurfaceTable(p *render.Painter) *rt.Table {
	s := &surface{painter: p, lineWidth: defaultLineWidth}
	t := rt.NewTable()
	set := func(name string, fn rt.GoFunctionFunc) {
		t.Set(rt.StringValue(name), rt.FunctionValue(goFunction(name, fn, 0, true)))
	}
	set("width", s.width)
	set("height", s.height)
	set("clear", s.clear)
	set("set_line_width", s.setLineWidth)
	set("line", s.line)
	set("point", s.point)
	set("text", s.text)
	set("text_width", s.textWidth)
	return t
}

// args returns the call arguments with the leading self table removed.
func args(c *rt.GoCont) []rt.Value {
	all := append(c.Args(), c.Etc()...)
	if len(all) > 0 {
		if _, ok := all[0].TryTable(); ok {
			return all[1:]
		}
	}
	return all
}

func (s *surface) width(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	w, _ := s.painter.Size()
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(w))), nil
}

func (s *surface) height(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	_, h := s.painter.Size()
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(h))), nil
}

// clear handles surface:clear(r, g, b[, a])
func (s *surface) clear(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	clr, err := getColor(args(c), 0)
	if err != nil {
		return nil, fmt.Errorf("surface.clear: %w", err)
	}
	s.painter.Clear(clr)
	return c.Next(), nil
}

func (s *surface) setLineWidth(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	w, err := getFloatArg(args(c), 0)
	if err != nil {
		return nil, fmt.Errorf("surface.set_line_width: %w", err)
	}
	s.lineWidth = w
	return c.Next(), nil
}

// line handles surface:line(x1, y1, x2, y2, r, g, b[, a])
func (s *surface) line(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	a := args(c)
	coords, err := getFloats(a, 4)
	if err != nil {
		return nil, fmt.Errorf("surface.line: %w", err)
	}
	clr, err := getColor(a, 4)
	if err != nil {
		return nil, fmt.Errorf("surface.line: %w", err)
	}
	s.painter.Line(coords[0], coords[1], coords[2], coords[3], s.lineWidth, clr)
	return c.Next(), nil
}

// point handles surface:point(x, y, radius, r, g, b[, a])
func (s *surface) point(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	a := args(c)
	v, err := getFloats(a, 3)
	if err != nil {
		return nil, fmt.Errorf("surface.point: %w", err)
	}
	clr, err := getColor(a, 3)
	if err != nil {
		return nil, fmt.Errorf("surface.point: %w", err)
	}
	s.painter.Point(v[0], v[1], v[2], clr)
	return c.Next(), nil
}

// text handles surface:text(str, x, y, r, g, b[, a])
func (s *surface) text(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	a := args(c)
	str, err := getStringArg(a, 0)
	if err != nil {
		return nil, fmt.Errorf("surface.text: %w", err)
	}
	if len(a) < 3 {
		return nil, fmt.Errorf("surface.text: want position, have %d arguments", len(a))
	}
	pos, err := getFloats(a[1:], 2)
	if err != nil {
		return nil, fmt.Errorf("surface.text: %w", err)
	}
	clr, err := getColor(a, 3)
	if err != nil {
		return nil, fmt.Errorf("surface.text: %w", err)
	}
	s.painter.Text(str, pos[0], pos[1], clr)
	return c.Next(), nil
}

func (s *surface) textWidth(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	str, err := getStringArg(args(c), 0)
	if err != nil {
		return nil, fmt.Errorf("surface.text_width: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.FloatValue(s.painter.MeasureText(str))), nil
}

// getColor reads r, g, b and an optional alpha starting at idx.
func getColor(args []rt.Value, idx int) (clr color.RGBA, err error) {
	if len(args) < idx+3 {
		return clr, fmt.Errorf("want r, g, b at argument %d, have %d arguments", idx+1, len(args))
	}
	rgb, err := getFloats(args[idx:], 3)
	if err != nil {
		return clr, err
	}
	alpha := 1.0
	if len(args) > idx+3 && args[idx+3] != rt.NilValue {
		if alpha, err = getFloatArg(args, idx+3); err != nil {
			return clr, err
		}
	}
	return render.UnitRGBA(rgb[0], rgb[1], rgb[2], alpha), nil
}

func getFloats(args []rt.Value, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		f, err := getFloatArg(args, i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func getFloatArg(args []rt.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx+1, len(args))
	}
	if f, ok := args[idx].TryFloat(); ok {
		return f, nil
	}
	if i, ok := args[idx].TryInt(); ok {
		return float64(i), nil
	}
	return 0, fmt.Errorf("argument %d is not a number", idx+1)
}

func getStringArg(args []rt.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("argument %d out of range (have %d)", idx+1, len(args))
	}
	if s, ok := args[idx].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("argument %d is not a string", idx+1)
}
