package config

import (
	"fmt"
	"io"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// Resource limits applied while a configuration script runs.
const (
	configCPULimit    = 10_000_000
	configMemoryLimit = 50 * 1024 * 1024
)

// LuaParser executes Lua configuration scripts and reads the vdrm.config
// table they assign.
type LuaParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaParser creates a parser with a fresh Lua runtime. Output from print
// statements in the configuration goes to stdout; nil discards it.
func NewLuaParser(stdout io.Writer) *LuaParser {
	if stdout == nil {
		stdout = io.Discard
	}
	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)
	return &LuaParser{runtime: runtime, cleanup: cleanup}
}

// Parse executes content and extracts a Config. Missing keys keep their
// defaults. Environment references in string values are expanded.
func (p *LuaParser) Parse(name string, content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vdrmTable := rt.NewTable()
	vdrmTable.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("vdrm"), rt.TableValue(vdrmTable))

	closure, err := p.runtime.CompileAndLoadLuaChunk(name, content, rt.TableValue(p.runtime.GlobalEnv()))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	if err := p.run(closure); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}

	cfg := DefaultConfig()
	vdrmVal := p.runtime.GlobalEnv().Get(rt.StringValue("vdrm"))
	vdrmTable, ok := vdrmVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("%s: vdrm is not a table", name)
	}
	configTable, ok := vdrmTable.Get(rt.StringValue("config")).TryTable()
	if !ok {
		return nil, fmt.Errorf("%s: vdrm.config is not a table", name)
	}
	if err := extract(&cfg, configTable); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	ExpandEnvConfig(&cfg)
	return &cfg, nil
}

// run executes closure under the configuration resource limits. golua
// panics when a hard limit is exceeded.
func (p *LuaParser) run(closure *rt.Closure) (err error) {
	p.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    configCPULimit,
			Memory: configMemoryLimit,
		},
	})
	defer p.runtime.PopContext()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resource limit exceeded: %v", r)
		}
	}()

	_, err = rt.Call1(p.runtime.MainThread(), rt.FunctionValue(closure))
	return err
}

// Close releases the Lua runtime.
func (p *LuaParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

func extract(cfg *Config, t *rt.Table) error {
	if v := getTableInt(t, "window_width"); v != nil {
		cfg.Window.Width = *v
	}
	if v := getTableInt(t, "window_height"); v != nil {
		cfg.Window.Height = *v
	}
	if v := getTableString(t, "window_title"); v != nil {
		cfg.Window.Title = *v
	}
	if v := getTableString(t, "background_color"); v != nil {
		cfg.Window.BackgroundColor = *v
	}
	if v := getTableString(t, "foreground_color"); v != nil {
		cfg.Window.ForegroundColor = *v
	}
	if v := getTableString(t, "accent_color"); v != nil {
		cfg.Window.AccentColor = *v
	}

	if v := getTableInt(t, "canvas_width"); v != nil {
		cfg.Canvas.Width = *v
	}
	if v := getTableInt(t, "canvas_height"); v != nil {
		cfg.Canvas.Height = *v
	}
	if v := getTableBool(t, "hidpi"); v != nil {
		cfg.Canvas.HiDPI = *v
	}

	if v := getTableString(t, "variant"); v != nil {
		cfg.Panel.Variant = *v
	}
	if v := getTableInt(t, "num_screens"); v != nil {
		cfg.Panel.NumScreens = *v
	}
	if v := getTableString(t, "plot_type"); v != nil {
		cfg.Panel.PlotType = *v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"angle", &cfg.Controls.Angle},
		{"angle_2d", &cfg.Controls.Angle2D},
		{"pitch", &cfg.Controls.Pitch},
		{"yaw", &cfg.Controls.Yaw},
		{"min_angle", &cfg.Controls.MinAngle},
		{"max_angle", &cfg.Controls.MaxAngle},
	}
	for _, f := range floats {
		if v := getTableFloat(t, f.key); v != nil {
			*f.dst = *v
		}
	}
	if v := getTableBool(t, "show_all"); v != nil {
		cfg.Controls.ShowAll = *v
	}
	if val := t.Get(rt.StringValue("screens")); val != rt.NilValue {
		screens, err := getIntList(val)
		if err != nil {
			return fmt.Errorf("screens: %w", err)
		}
		cfg.Controls.Screens = screens
	}

	if v := getTableString(t, "renderer"); v != nil {
		cfg.Renderer.Script = *v
	}
	if v := getTableInt(t, "renderer_cpu_limit"); v != nil && *v > 0 {
		cfg.Renderer.CPULimit = uint64(*v)
	}
	if v := getTableInt(t, "renderer_memory_limit"); v != nil && *v > 0 {
		cfg.Renderer.MemoryLimit = uint64(*v)
	}

	if v := getTableString(t, "log_level"); v != nil {
		cfg.Log.Level = *v
	}
	if v := getTableBool(t, "log_json"); v != nil {
		cfg.Log.JSON = *v
	}
	if v := getTableBool(t, "watch"); v != nil {
		cfg.Watch = *v
	}
	return nil
}

// getTableBool retrieves a boolean, accepting "true"/"false" strings.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if b, ok := val.TryBool(); ok {
		return &b
	}
	if s, ok := val.TryString(); ok {
		b := s == "true" || s == "yes" || s == "1"
		return &b
	}
	return nil
}

func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if s, ok := val.TryString(); ok && val != rt.NilValue {
		return &s
	}
	return nil
}

func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}
	if n, ok := val.TryFloat(); ok {
		return &n
	}
	return nil
}

func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}
	return nil
}

// getIntList reads a Lua sequence of integers.
func getIntList(val rt.Value) ([]int, error) {
	t, ok := val.TryTable()
	if !ok {
		return nil, fmt.Errorf("expected a list, got %s", val.TypeName())
	}
	out := []int{}
	for i := int64(1); ; i++ {
		v := t.Get(rt.IntValue(i))
		if v == rt.NilValue {
			return out, nil
		}
		n, ok := v.TryInt()
		if !ok {
			return nil, fmt.Errorf("element %d is not an integer", i)
		}
		out = append(out, int(n))
	}
}
