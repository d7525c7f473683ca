package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

const sampleConfig = `
vdrm.config = {
  variant = "range",
  window_width = 800,
  window_height = 600,
  window_title = "bench",
  accent_color = "#ff8800",
  canvas_width = 300,
  canvas_height = 150,
  hidpi = true,
  angle = 12,
  pitch = 40,
  yaw = 25.5,
  min_angle = 10,
  max_angle = 400,
  show_all = "true",
  screens = {0, 2},
  renderer = "plots/renderer.lua",
  log_level = "debug",
  watch = true,
}
`

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.lua")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if cfg.Window.Width != 800 || cfg.Window.Height != 600 || cfg.Window.Title != "bench" || cfg.Window.AccentColor != "#ff8800" {
		t.Errorf("Window = %+v", cfg.Window)
	}
	if cfg.Canvas.Width != 300 || cfg.Canvas.Height != 150 || !cfg.Canvas.HiDPI {
		t.Errorf("Canvas = %+v", cfg.Canvas)
	}
	if cfg.Panel.Variant != "range" {
		t.Errorf("Variant = %q", cfg.Panel.Variant)
	}
	want := ControlsConfig{Angle: 12, Pitch: 40, Yaw: 25.5, MinAngle: 10, MaxAngle: 400, ShowAll: true, Screens: []int{0, 2}}
	if !reflect.DeepEqual(cfg.Controls, want) {
		t.Errorf("Controls = %+v, want %+v", cfg.Controls, want)
	}
	if got, want := cfg.Renderer.Script, filepath.Join(dir, "plots", "renderer.lua"); got != want {
		t.Errorf("Renderer.Script = %q, want %q", got, want)
	}
	if cfg.Log.Level != "debug" || !cfg.Watch {
		t.Errorf("Log = %+v, Watch = %v", cfg.Log, cfg.Watch)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := ParseReader(strings.NewReader(`vdrm.config = {}`))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	def := DefaultConfig()
	if !reflect.DeepEqual(*cfg, def) {
		t.Errorf("empty config = %+v, want defaults %+v", *cfg, def)
	}

	caps, err := cfg.Capabilities()
	if err != nil {
		t.Fatal(err)
	}
	if !caps.ModeSwitch || !caps.Screens || caps.NumScreens != 3 {
		t.Errorf("default capabilities = %+v, want combined with 3 screens", caps)
	}
}

func TestParseFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"configs/panel.lua": {Data: []byte(`vdrm.config = { variant = "screens", renderer = "r.lua" }`)},
	}
	cfg, err := ParseFromFS(fsys, "configs/panel.lua")
	if err != nil {
		t.Fatalf("ParseFromFS() error = %v", err)
	}
	if cfg.Panel.Variant != "screens" || cfg.Renderer.Script != "r.lua" {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := ParseFromFS(fsys, "missing.lua"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", `vdrm.config = {`, "compile"},
		{"runtime", `error("nope")`, "execute"},
		{"not a table", `vdrm.config = 5`, "vdrm.config is not a table"},
		{"screens not a list", `vdrm.config = { screens = 3 }`, "screens"},
		{"bad variant", `vdrm.config = { variant = "both" }`, "variant"},
		{"runaway loop", `while true do end`, "execute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParseExpandsEnvironment(t *testing.T) {
	t.Setenv("VDRM_PLOTS", "/opt/plots")
	cfg, err := ParseReader(strings.NewReader(`vdrm.config = { renderer = "${VDRM_PLOTS}/r.lua", window_title = "${VDRM_TITLE:-panel}" }`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Renderer.Script != "/opt/plots/r.lua" {
		t.Errorf("Renderer.Script = %q", cfg.Renderer.Script)
	}
	if cfg.Window.Title != "panel" {
		t.Errorf("Window.Title = %q", cfg.Window.Title)
	}
}

func TestInitial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Controls.Angle = 7
	init := cfg.Initial(1200)
	if init.Angle != 7 || init.Pitch != DefaultPitch || init.ParentWidth != 1200 {
		t.Errorf("Initial() = %+v", init)
	}
	init.Screens[0] = 99
	if cfg.Controls.Screens[0] == 99 {
		t.Error("Initial() must copy the screen list")
	}
}
