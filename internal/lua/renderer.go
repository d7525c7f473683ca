package lua

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"sync"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/render"
)

// Global function names a renderer script defines. coord is optional.
const (
	FuncPlot2D = "plot2d"
	FuncPlot3D = "plot3d"
	FuncCoord  = "coord"
)

// DemoScriptName names the embedded schematic renderer.
const DemoScriptName = "demo.lua"

//go:embed demo.lua
var demoScript []byte

// DemoScript returns the source of the embedded schematic renderer.
func DemoScript() []byte {
	out := make([]byte, len(demoScript))
	copy(out, demoScript)
	return out
}

// Renderer implements chart.Renderer by calling into a Lua script. It only
// draws onto chart.RasterSurface values.
//
// Reload swaps the script in place, so a Renderer installed once in a
// chart.Binding keeps serving after its script changes.
type Renderer struct {
	config  RuntimeConfig
	name    string
	runtime *Runtime
	mu      sync.Mutex
}

// NewRenderer compiles and runs code, then checks that it defines plot2d and
// plot3d.
func NewRenderer(config RuntimeConfig, name string, code []byte) (*Renderer, error) {
	runtime, err := compile(config, name, code)
	if err != nil {
		return nil, err
	}
	return &Renderer{config: config, name: name, runtime: runtime}, nil
}

// LoadRenderer reads a renderer script from disk.
func LoadRenderer(config RuntimeConfig, path string) (*Renderer, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read renderer script %s: %w", path, err)
	}
	return NewRenderer(config, path, code)
}

// LoadRendererFromFS reads a renderer script from fsys.
func LoadRendererFromFS(config RuntimeConfig, fsys fs.FS, path string) (*Renderer, error) {
	code, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read renderer script from FS %s: %w", path, err)
	}
	return NewRenderer(config, path, code)
}

// NewDemoRenderer returns a renderer running the embedded schematic script.
func NewDemoRenderer(config RuntimeConfig) (*Renderer, error) {
	return NewRenderer(config, DemoScriptName, demoScript)
}

func compile(config RuntimeConfig, name string, code []byte) (*Runtime, error) {
	runtime, err := New(config)
	if err != nil {
		return nil, err
	}
	if _, err := runtime.ExecuteString(name, string(code)); err != nil {
		runtime.Close()
		return nil, err
	}
	for _, fn := range []string{FuncPlot2D, FuncPlot3D} {
		if !runtime.HasFunction(fn) {
			runtime.Close()
			return nil, fmt.Errorf("%s: %w: %s", name, ErrMissingFunction, fn)
		}
	}
	return runtime, nil
}

// Name returns the name of the loaded script.
func (r *Renderer) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// Reload replaces the script. On error the previous script stays active.
func (r *Renderer) Reload(name string, code []byte) error {
	runtime, err := compile(r.config, name, code)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.runtime
	r.runtime = runtime
	r.name = name
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// ReloadFile replaces the script with the contents of path.
func (r *Renderer) ReloadFile(path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read renderer script %s: %w", path, err)
	}
	return r.Reload(path, code)
}

// Plot2D calls plot2d(surface, angle, screens).
func (r *Renderer) Plot2D(s chart.Surface, angle float64, screens []int) error {
	surf, err := surfaceValue(s)
	if err != nil {
		return err
	}
	return r.plot(FuncPlot2D, surf, rt.FloatValue(angle), intList(screens))
}

// Plot3D calls plot3d(surface, args) where args holds angle, pitch, yaw,
// min_angle, max_angle and screens. Absent options are nil.
func (r *Renderer) Plot3D(s chart.Surface, args chart.Plot3DArgs) error {
	surf, err := surfaceValue(s)
	if err != nil {
		return err
	}

	t := rt.NewTable()
	setOptional(t, "angle", args.Angle)
	t.Set(rt.StringValue("pitch"), rt.FloatValue(args.Pitch))
	t.Set(rt.StringValue("yaw"), rt.FloatValue(args.Yaw))
	setOptional(t, "min_angle", args.MinAngle)
	setOptional(t, "max_angle", args.MaxAngle)
	if args.Screens != nil {
		t.Set(rt.StringValue("screens"), intList(args.Screens))
	}
	return r.plot(FuncPlot3D, surf, rt.TableValue(t))
}

// Coord calls coord(x, y). The script returns {x, y}, {x = .., y = ..} or nil.
func (r *Renderer) Coord(x, y float64) (chart.DataPoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runtime == nil || !r.runtime.HasFunction(FuncCoord) {
		return chart.DataPoint{}, false
	}
	v, err := r.runtime.CallFunction(FuncCoord, rt.FloatValue(x), rt.FloatValue(y))
	if err != nil {
		return chart.DataPoint{}, false
	}
	return dataPoint(v)
}

// Close releases the Lua runtime. Later calls fail with ErrClosed.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runtime == nil {
		return nil
	}
	err := r.runtime.Close()
	r.runtime = nil
	return err
}

func (r *Renderer) plot(fn string, args ...rt.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runtime == nil {
		return ErrClosed
	}
	_, err := r.runtime.CallFunction(fn, args...)
	return err
}

func surfaceValue(s chart.Surface) (rt.Value, error) {
	raster, ok := s.(chart.RasterSurface)
	if !ok {
		return rt.NilValue, fmt.Errorf("%w: %T", chart.ErrUnsupportedSurface, s)
	}
	return rt.TableValue(newSurfaceTable(render.NewPainter(raster.Image()))), nil
}

// intList converts indices to a 1-based Lua sequence. nil becomes Lua nil.
func intList(v []int) rt.Value {
	if v == nil {
		return rt.NilValue
	}
	t := rt.NewTable()
	for i, n := range v {
		t.Set(rt.IntValue(int64(i+1)), rt.IntValue(int64(n)))
	}
	return rt.TableValue(t)
}

func setOptional(t *rt.Table, key string, v *float64) {
	if v != nil {
		t.Set(rt.StringValue(key), rt.FloatValue(*v))
	}
}

func dataPoint(v rt.Value) (chart.DataPoint, bool) {
	t, ok := v.TryTable()
	if !ok {
		return chart.DataPoint{}, false
	}
	x, okX := number(t.Get(rt.StringValue("x")))
	y, okY := number(t.Get(rt.StringValue("y")))
	if !okX || !okY {
		x, okX = number(t.Get(rt.IntValue(1)))
		y, okY = number(t.Get(rt.IntValue(2)))
	}
	if !okX || !okY {
		return chart.DataPoint{}, false
	}
	return chart.DataPoint{X: x, Y: y}, true
}

func number(v rt.Value) (float64, bool) {
	if f, ok := v.TryFloat(); ok {
		return f, true
	}
	if i, ok := v.TryInt(); ok {
		return float64(i), true
	}
	return 0, false
}
