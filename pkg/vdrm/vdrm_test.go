package vdrm

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

const failingRenderer = `
function plot2d(surface, angle, screens) error("no 2d") end
function plot3d(surface, args) error("no 3d") end
`

const countingRenderer = `
redraws = 0
function plot2d(surface, angle, screens) redraws = redraws + 1 end
function plot3d(surface, args)
  redraws = redraws + 1
  surface:clear(0, 1, 0)
end
`

func headless(t *testing.T) *Options {
	t.Helper()
	return &Options{Headless: true, Metrics: NewMetrics(), ShutdownTimeout: 2 * time.Second}
}

func startReader(t *testing.T, cfg string, opts *Options) Viewer {
	t.Helper()
	v, err := NewFromReader(strings.NewReader(cfg), opts)
	if err != nil {
		t.Fatalf("NewFromReader() error = %v", err)
	}
	if err := v.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { v.Stop() })
	return v
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventStarted, "started"},
		{EventStopped, "stopped"},
		{EventRestarted, "restarted"},
		{EventConfigReloaded, "config_reloaded"},
		{EventRendererReloaded, "renderer_reloaded"},
		{EventError, "error"},
		{EventType(100), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.eventType.String(); got != tt.expected {
				t.Errorf("EventType.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewWithInvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/panel.lua", nil)
	if err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
	if CategoryOf(err) != ErrorCategoryConfig {
		t.Errorf("CategoryOf() = %v, want config", CategoryOf(err))
	}
}

func TestNewFromReaderInvalidVariant(t *testing.T) {
	_, err := NewFromReader(strings.NewReader(`vdrm.config = { variant = "sideways" }`), nil)
	if err == nil || !strings.Contains(err.Error(), "variant") {
		t.Errorf("NewFromReader() error = %v, want a variant error", err)
	}
}

func TestHeadlessLifecycle(t *testing.T) {
	opts := headless(t)
	v := startReader(t, `vdrm.config = {}`, opts)

	if !v.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if err := v.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	st := v.Status()
	if st.Variant != "combined" || st.Mode != "3d" || st.Renderer != "demo.lua" || st.ConfigSource != "reader" {
		t.Errorf("Status() = %+v", st)
	}
	if !strings.HasPrefix(st.StatusLine, "angle: 0 Pitch:0.5, Yaw:0.3 Screens:[0 1 2]") {
		t.Errorf("StatusLine = %q", st.StatusLine)
	}
	if h := v.Health(); !h.IsHealthy() {
		t.Errorf("Health() = %+v, want healthy", h)
	}

	if err := v.Redraw(); err != nil {
		t.Fatalf("Redraw() error = %v", err)
	}
	if got := opts.Metrics.Snapshot().Redraws3D; got != 2 {
		t.Errorf("Redraws3D = %d, want 2", got)
	}

	if err := v.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if v.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if err := v.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if err := v.Redraw(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Redraw() after Stop error = %v, want ErrNotRunning", err)
	}
	if h := v.Health(); h.Status != HealthUnhealthy {
		t.Errorf("Health().Status = %v after Stop, want unhealthy", h.Status)
	}
}

func TestSnapshot(t *testing.T) {
	v := startReader(t, `vdrm.config = { canvas_width = 120, canvas_height = 60 }`, headless(t))

	var buf bytes.Buffer
	if err := v.Snapshot(&buf); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 60 {
		t.Errorf("snapshot size = %dx%d, want 120x60", b.Dx(), b.Dy())
	}
}

func TestWriteSnapshot(t *testing.T) {
	v := startReader(t, `vdrm.config = {}`, headless(t))
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WriteSnapshot(v, path); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("snapshot file: %v, %v", fi, err)
	}
}

func TestNewFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"panel.lua":       {Data: []byte(`vdrm.config = { variant = "range", renderer = "plots/count.lua" }`)},
		"plots/count.lua": {Data: []byte(countingRenderer)},
	}
	opts := headless(t)
	v, err := NewFromFS(fsys, "panel.lua", opts)
	if err != nil {
		t.Fatalf("NewFromFS() error = %v", err)
	}
	if err := v.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer v.Stop()

	st := v.Status()
	if st.Renderer != "plots/count.lua" || st.ConfigSource != "embedded:panel.lua" {
		t.Errorf("Status() = %+v", st)
	}
	if !strings.HasPrefix(st.StatusLine, "angle: 0 in (0..512)") {
		t.Errorf("StatusLine = %q", st.StatusLine)
	}

	fsys["plots/count.lua"] = &fstest.MapFile{Data: []byte(failingRenderer)}
	if err := v.ReloadRenderer(); err == nil {
		t.Fatal("ReloadRenderer() with a failing script should report the redraw failure")
	}
	if got := v.Status().StatusLine; !strings.HasPrefix(got, "Render failed: ") {
		t.Errorf("StatusLine = %q after reload", got)
	}
	if h := v.Health(); h.Components["renderer"].Status != HealthDegraded {
		t.Errorf("renderer health = %+v, want degraded", h.Components["renderer"])
	}
	if snap := opts.Metrics.Snapshot(); snap.RendererReloads != 0 || snap.RenderFailures != 1 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestRenderFailureReachesErrorHandler(t *testing.T) {
	fsys := fstest.MapFS{
		"panel.lua": {Data: []byte(`vdrm.config = { renderer = "bad.lua" }`)},
		"bad.lua":   {Data: []byte(failingRenderer)},
	}
	v, err := NewFromFS(fsys, "panel.lua", headless(t))
	if err != nil {
		t.Fatal(err)
	}
	errs := make(chan error, 4)
	v.SetErrorHandler(func(err error) { errs <- err })
	if err := v.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer v.Stop()

	select {
	case err := <-errs:
		var ce *CategorizedError
		if !errors.As(err, &ce) || ce.Category != ErrorCategoryRender {
			t.Errorf("handler got %v, want a render error", err)
		}
		if !strings.Contains(err.Error(), "no 3d") {
			t.Errorf("error %q should carry the script message", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not called")
	}
	if v.Status().LastError == nil {
		t.Error("Status().LastError = nil")
	}
}

func TestMissingRendererFailsStart(t *testing.T) {
	v, err := NewFromReader(strings.NewReader(`vdrm.config = { renderer = "/nonexistent/r.lua" }`), headless(t))
	if err != nil {
		t.Fatal(err)
	}
	err = v.Start()
	if err == nil {
		v.Stop()
		t.Fatal("Start() should fail without a renderer script")
	}
	if CategoryOf(err) != ErrorCategoryLua {
		t.Errorf("CategoryOf(%v) = %v, want lua", err, CategoryOf(err))
	}
	if v.IsRunning() {
		t.Error("IsRunning() = true after a failed Start")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "panel.lua")
	writeFile(t, filepath.Join(dir, "a.lua"), countingRenderer)
	writeFile(t, filepath.Join(dir, "b.lua"), countingRenderer)
	writeFile(t, cfgPath, `vdrm.config = { variant = "screens", renderer = "a.lua" }`)

	opts := headless(t)
	v, err := New(cfgPath, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	defer v.Stop()

	writeFile(t, cfgPath, `vdrm.config = { variant = "range", renderer = "a.lua" }`)
	if err := v.ReloadConfig(); !errors.Is(err, ErrRestartRequired) {
		t.Errorf("ReloadConfig() error = %v, want ErrRestartRequired", err)
	}
	if got := v.Status().Variant; got != "screens" {
		t.Errorf("Variant = %q, the old configuration should stay active", got)
	}

	writeFile(t, cfgPath, `vdrm.config = { variant = "screens", renderer = "b.lua" }`)
	if err := v.ReloadConfig(); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if got := v.Status().Renderer; got != filepath.Join(dir, "b.lua") {
		t.Errorf("Renderer = %q, want b.lua", got)
	}
	if snap := opts.Metrics.Snapshot(); snap.ConfigReloads != 1 || snap.RendererReloads != 1 {
		t.Errorf("metrics = %+v", snap)
	}

	writeFile(t, cfgPath, `vdrm.config = { variant = "range" }`)
	if err := v.Restart(); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if st := v.Status(); st.Variant != "range" || st.Renderer != "demo.lua" {
		t.Errorf("Status() after Restart = %+v", st)
	}
}

func TestWatchReloadsRenderer(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "r.lua")
	writeFile(t, script, countingRenderer)
	writeFile(t, filepath.Join(dir, "panel.lua"), `vdrm.config = { renderer = "r.lua", watch = true }`)

	opts := headless(t)
	opts.WatchDebounce = 50 * time.Millisecond
	v, err := New(filepath.Join(dir, "panel.lua"), opts)
	if err != nil {
		t.Fatal(err)
	}
	events := make(chan EventType, 8)
	v.SetEventHandler(func(e Event) { events <- e.Type })
	if err := v.Start(); err != nil {
		t.Fatal(err)
	}
	defer v.Stop()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, script, countingRenderer+"\n-- edited\n")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-events:
			if e == EventRendererReloaded {
				return
			}
		case <-deadline:
			t.Fatal("renderer was not reloaded after its script changed")
		}
	}
}

func TestNewFromTestdata(t *testing.T) {
	v, err := New("testdata/panel.lua", headless(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := v.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer v.Stop()

	if got := v.Status().StatusLine; !strings.HasPrefix(got, "angle: 0 Pitch:0.4, Yaw:0.3 Screens:[0 2]") {
		t.Errorf("StatusLine = %q", got)
	}
}
