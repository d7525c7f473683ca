package vdrm

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-vdrm/internal/config"
	"github.com/opd-ai/go-vdrm/internal/lua"
	"github.com/opd-ai/go-vdrm/internal/panel"
	"github.com/opd-ai/go-vdrm/internal/render"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// source describes where the configuration comes from.
type source struct {
	name string
	// path is set for configurations on disk, which can be watched.
	path string
	// fsys is set for configurations loaded from an fs.FS.
	fsys fs.FS
	load func() (*config.Config, error)
}

// session holds what one Start builds. It is replaced on every start.
type session struct {
	doc      *ui.Memory
	panel    *panel.Panel
	renderer *lua.Renderer
	// game is nil when headless.
	game    *render.Game
	watcher *fileWatcher
}

// viewerImpl is the private implementation of the Viewer interface.
type viewerImpl struct {
	cfg     *config.Config
	opts    Options
	src     source
	metrics *Metrics
	logger  Logger

	sess *session
	// uiMu serializes panel work when there is no window loop.
	uiMu sync.Mutex

	running   atomic.Bool
	startTime time.Time
	lastError atomic.Value // stores error

	errorHandler ErrorHandler
	eventHandler EventHandler

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Verify interface implementation at compile time.
var _ Viewer = (*viewerImpl)(nil)

func newViewer(cfg *config.Config, opts Options, src source) *viewerImpl {
	v := &viewerImpl{cfg: cfg, opts: opts, src: src, metrics: opts.Metrics, logger: opts.Logger}
	if v.metrics == nil {
		v.metrics = DefaultMetrics()
	}
	if v.logger == nil {
		v.logger = NopLogger()
	}
	return v
}

// Start builds the panel and starts the window or headless loop.
func (v *viewerImpl) Start() error {
	v.mu.Lock()

	if v.running.Load() {
		v.mu.Unlock()
		return ErrAlreadyRunning
	}

	v.ctx, v.cancel = context.WithCancel(context.Background())

	sess, err := v.initSession(v.cfg)
	if err != nil {
		v.cancel()
		v.mu.Unlock()
		return fmt.Errorf("failed to initialize: %w", err)
	}
	v.sess = sess

	// Set running state BEFORE starting goroutine to avoid race
	v.running.Store(true)
	v.startTime = time.Now()
	v.metrics.IncrementStarts()
	v.metrics.SetRunning(true)

	ctx, cancel := v.ctx, v.cancel
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer v.metrics.SetRunning(false)
		defer v.running.Store(false)
		defer v.cleanup(sess)

		if sess.game == nil {
			<-ctx.Done()
		} else {
			v.runRenderLoop(sess.game)
			// The window may close on its own; cancel so waiters wake up.
			cancel()
		}

		v.emitEvent(EventStopped, "Instance stopped")
	}()

	if sess.watcher != nil {
		sess.watcher.Start()
	}

	v.mu.Unlock()

	v.logger.Info("panel started", "source", v.src.name, "variant", v.cfg.Panel.Variant, "renderer", sess.renderer.Name())
	v.emitEvent(EventStarted, "Instance started")
	return nil
}

// initSession builds the document, the renderer, the panel and, unless
// headless, the window.
func (v *viewerImpl) initSession(cfg *config.Config) (*session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}
	caps, err := cfg.Capabilities()
	if err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryConfig, SeverityCritical)
	}

	sess := &session{}
	parentWidth := panel.ParentWidthFor(float64(cfg.Canvas.Width))
	sess.doc = panel.NewMemoryDocument(caps, cfg.Initial(parentWidth))

	if !v.opts.Headless {
		rc, err := v.windowConfig(cfg)
		if err != nil {
			return nil, NewCategorizedError(err, ErrorCategoryConfig, SeverityCritical)
		}
		sess.game = render.NewGame(rc, sess.doc)
		sess.game.SetContext(v.ctx)
		sess.game.SetErrorHandler(func(err error) {
			v.notifyError(NewCategorizedError(err, ErrorCategoryUI, SeverityError))
		})
		sess.doc.MemCanvas().SetParentWidth(sess.game.ParentWidth())
	}

	sess.renderer, err = v.loadRenderer(cfg)
	if err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryLua, SeverityCritical)
	}

	sess.panel, err = panel.New(sess.doc, caps,
		panel.WithLogger(v.logger),
		panel.WithHiDPI(cfg.Canvas.HiDPI),
		panel.WithObserver(v.metrics),
		panel.WithErrorHandler(func(err error) {
			v.notifyError(NewCategorizedError(err, ErrorCategoryRender, SeverityError))
		}),
	)
	if err != nil {
		sess.renderer.Close()
		return nil, NewCategorizedError(err, ErrorCategoryUI, SeverityCritical)
	}
	if err := sess.panel.Start(); err != nil {
		sess.renderer.Close()
		return nil, NewCategorizedError(err, ErrorCategoryUI, SeverityCritical)
	}
	// The deferred first redraw runs inside Install; its failure reaches
	// the error handler and does not abort the start.
	if err := sess.panel.Install(sess.renderer); err != nil {
		sess.renderer.Close()
		return nil, NewCategorizedError(err, ErrorCategoryRender, SeverityCritical)
	}

	if v.opts.WatchConfig || cfg.Watch {
		sess.watcher = v.newWatcher(cfg)
	}
	return sess, nil
}

func (v *viewerImpl) windowConfig(cfg *config.Config) (render.Config, error) {
	rc := render.DefaultConfig()
	rc.Width = cfg.Window.Width
	rc.Height = cfg.Window.Height
	rc.Title = cfg.Window.Title
	if v.opts.WindowTitle != "" {
		rc.Title = v.opts.WindowTitle
	}
	theme, err := rc.Theme.WithColors(cfg.Window.BackgroundColor, cfg.Window.ForegroundColor, cfg.Window.AccentColor)
	if err != nil {
		return rc, err
	}
	rc.Theme = theme
	return rc, rc.Validate()
}

func (v *viewerImpl) runtimeConfig(cfg *config.Config) lua.RuntimeConfig {
	rc := lua.DefaultConfig()
	if cfg.Renderer.CPULimit > 0 {
		rc.CPULimit = cfg.Renderer.CPULimit
	}
	if cfg.Renderer.MemoryLimit > 0 {
		rc.MemoryLimit = cfg.Renderer.MemoryLimit
	}
	if v.opts.LuaCPULimit > 0 {
		rc.CPULimit = v.opts.LuaCPULimit
	}
	if v.opts.LuaMemoryLimit > 0 {
		rc.MemoryLimit = v.opts.LuaMemoryLimit
	}
	return rc
}

// loadRenderer compiles the configured script, or the built-in demo when
// there is none.
func (v *viewerImpl) loadRenderer(cfg *config.Config) (*lua.Renderer, error) {
	rc := v.runtimeConfig(cfg)
	switch {
	case cfg.Renderer.Script == "":
		return lua.NewDemoRenderer(rc)
	case v.src.fsys != nil && !filepath.IsAbs(cfg.Renderer.Script):
		return lua.LoadRendererFromFS(rc, v.src.fsys, cfg.Renderer.Script)
	default:
		return lua.LoadRenderer(rc, cfg.Renderer.Script)
	}
}

// newWatcher watches the configuration file and the renderer script. Only
// files on disk are watched; a watcher that cannot start is reported and
// skipped.
func (v *viewerImpl) newWatcher(cfg *config.Config) *fileWatcher {
	var paths []string
	if v.src.path != "" {
		paths = append(paths, v.src.path)
	}
	if cfg.Renderer.Script != "" && (v.src.fsys == nil || filepath.IsAbs(cfg.Renderer.Script)) {
		paths = append(paths, cfg.Renderer.Script)
	}
	if len(paths) == 0 {
		return nil
	}

	configAbs := ""
	if v.src.path != "" {
		configAbs, _ = filepath.Abs(v.src.path)
	}
	w, err := newFileWatcher(paths, v.opts.WatchDebounce,
		func(path string) error {
			if path == configAbs {
				return v.ReloadConfig()
			}
			return v.ReloadRenderer()
		},
		func(err error) {
			v.notifyError(NewCategorizedError(fmt.Errorf("watch: %w", err), ErrorCategoryConfig, SeverityWarning))
		})
	if err != nil {
		v.notifyError(NewCategorizedError(fmt.Errorf("start watcher: %w", err), ErrorCategoryConfig, SeverityWarning))
		return nil
	}
	v.logger.Debug("watching files", "paths", paths)
	return w
}

// onUI runs fn where panel work is allowed: on the window's update loop, or
// under uiMu when headless. It waits for fn to finish.
func (v *viewerImpl) onUI(fn func() error) error {
	v.mu.RLock()
	sess, ctx := v.sess, v.ctx
	v.mu.RUnlock()
	if sess == nil || !v.running.Load() {
		return ErrNotRunning
	}

	if sess.game == nil {
		v.uiMu.Lock()
		defer v.uiMu.Unlock()
		return fn()
	}

	done := make(chan error, 1)
	if !sess.game.Post(func() { done <- fn() }) {
		return errors.New("window task queue is full")
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrNotRunning
	case <-time.After(v.shutdownTimeout()):
		return errors.New("timed out waiting for the window")
	}
}

func (v *viewerImpl) session() *session {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sess
}

func (v *viewerImpl) shutdownTimeout() time.Duration {
	if v.opts.ShutdownTimeout > 0 {
		return v.opts.ShutdownTimeout
	}
	return DefaultShutdownTimeout
}

// Stop shuts the instance down.
func (v *viewerImpl) Stop() error {
	if !v.running.Load() {
		return nil // Already stopped
	}

	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.mu.Unlock()

	done := make(chan struct{})
	go func() {
		v.wg.Wait()
		close(done)
	}()

	timeout := v.shutdownTimeout()
	select {
	case <-done:
		v.metrics.IncrementStops()
		return nil
	case <-time.After(timeout):
		err := fmt.Errorf("shutdown timeout after %v: some goroutines did not stop", timeout)
		v.notifyError(NewCategorizedError(err, ErrorCategoryUnknown, SeverityCritical))
		return err
	}
}

// Restart performs a stop followed by a start.
func (v *viewerImpl) Restart() error {
	if err := v.Stop(); err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}

	cfg, err := v.src.load()
	if err != nil {
		wrappedErr := NewCategorizedError(fmt.Errorf("config reload failed: %w", err), ErrorCategoryConfig, SeverityError)
		v.notifyError(wrappedErr)
		return wrappedErr
	}
	v.mu.Lock()
	v.cfg = cfg
	v.mu.Unlock()
	v.metrics.IncrementConfigReloads()
	v.emitEvent(EventConfigReloaded, "Configuration reloaded")

	if err := v.Start(); err != nil {
		wrappedErr := fmt.Errorf("start failed: %w", err)
		v.notifyError(NewCategorizedError(wrappedErr, CategoryOf(err), SeverityCritical))
		return wrappedErr
	}

	v.metrics.IncrementRestarts()
	v.emitEvent(EventRestarted, "Instance restarted")
	return nil
}

// ReloadConfig reloads the configuration in place.
func (v *viewerImpl) ReloadConfig() error {
	if !v.running.Load() {
		return ErrNotRunning
	}

	newCfg, err := v.src.load()
	if err != nil {
		wrappedErr := NewCategorizedError(fmt.Errorf("config reload failed: %w", err), ErrorCategoryConfig, SeverityError)
		v.notifyError(wrappedErr)
		return wrappedErr
	}

	v.mu.RLock()
	oldCfg := v.cfg
	v.mu.RUnlock()
	if field := restartField(oldCfg, newCfg); field != "" {
		err := NewCategorizedError(fmt.Errorf("%s changed: %w", field, ErrRestartRequired), ErrorCategoryConfig, SeverityWarning)
		v.notifyError(err)
		return err
	}

	v.mu.Lock()
	v.cfg = newCfg
	v.mu.Unlock()
	v.metrics.IncrementConfigReloads()
	v.logger.Info("configuration reloaded", "source", v.src.name)
	v.emitEvent(EventConfigReloaded, "Configuration reloaded in-place")

	if newCfg.Renderer != oldCfg.Renderer {
		return v.ReloadRenderer()
	}
	return nil
}

// restartField names the first setting that differs in a way ReloadConfig
// cannot apply, or returns "".
func restartField(oldCfg, newCfg *config.Config) string {
	switch {
	case oldCfg.Panel != newCfg.Panel:
		return "panel"
	case oldCfg.Canvas != newCfg.Canvas:
		return "canvas"
	case oldCfg.Window != newCfg.Window:
		return "window"
	}
	return ""
}

// ReloadRenderer recompiles the renderer script and redraws.
func (v *viewerImpl) ReloadRenderer() error {
	v.mu.RLock()
	cfg := v.cfg
	v.mu.RUnlock()

	err := v.onUI(func() error {
		sess := v.session()
		if err := v.reloadScript(sess.renderer, cfg); err != nil {
			return NewCategorizedError(err, ErrorCategoryLua, SeverityError)
		}
		return sess.panel.Redraw()
	})
	if errors.Is(err, ErrNotRunning) {
		return err
	}
	if err != nil {
		if CategoryOf(err) == ErrorCategoryUnknown {
			err = NewCategorizedError(err, ErrorCategoryRender, SeverityError)
		}
		v.notifyError(err)
		return err
	}

	v.metrics.IncrementRendererReloads()
	v.logger.Info("renderer reloaded", "script", cfg.Renderer.Script)
	v.emitEvent(EventRendererReloaded, "Renderer reloaded")
	return nil
}

func (v *viewerImpl) reloadScript(r *lua.Renderer, cfg *config.Config) error {
	switch script := cfg.Renderer.Script; {
	case script == "":
		return r.Reload(lua.DemoScriptName, lua.DemoScript())
	case v.src.fsys != nil && !filepath.IsAbs(script):
		code, err := fs.ReadFile(v.src.fsys, script)
		if err != nil {
			return fmt.Errorf("read renderer script: %w", err)
		}
		return r.Reload(script, code)
	default:
		return r.ReloadFile(script)
	}
}

// Redraw redraws the canvas.
func (v *viewerImpl) Redraw() error {
	return v.onUI(func() error {
		return v.session().panel.Redraw()
	})
}

// Snapshot writes the canvas as PNG.
func (v *viewerImpl) Snapshot(w io.Writer) error {
	return v.onUI(func() error {
		img := v.session().doc.MemCanvas().Image()
		if img.Bounds().Empty() {
			return NewCategorizedError(errors.New("canvas is empty"), ErrorCategoryRender, SeverityWarning)
		}
		return png.Encode(w, img)
	})
}

// WriteSnapshot writes the canvas of a running viewer to a PNG file.
func WriteSnapshot(v Viewer, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return v.Snapshot(f)
}

// IsRunning returns true if the instance is currently running.
func (v *viewerImpl) IsRunning() bool {
	return v.running.Load()
}

// Status returns detailed status information about the instance.
func (v *viewerImpl) Status() Status {
	v.mu.RLock()
	startTime := v.startTime
	sess := v.sess
	variant := v.cfg.Panel.Variant
	v.mu.RUnlock()

	st := Status{
		Running:      v.running.Load(),
		StartTime:    startTime,
		ConfigSource: v.src.name,
		Variant:      variant,
		LastError:    v.getError(),
	}
	if sess != nil {
		st.Renderer = sess.renderer.Name()
		st.Mode = sess.panel.Controls().Mode().String()
		st.StatusLine = sess.doc.Get(ui.RoleCoord).Text()
		if sess.game != nil {
			st.FrameTime = sess.game.Metrics().AverageFrameTime()
		}
	}
	return st
}

// SetErrorHandler registers a callback for runtime errors.
func (v *viewerImpl) SetErrorHandler(handler ErrorHandler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errorHandler = handler
}

// SetEventHandler registers a callback for lifecycle events.
func (v *viewerImpl) SetEventHandler(handler EventHandler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.eventHandler = handler
}

// Metrics returns the metrics collector for this instance.
func (v *viewerImpl) Metrics() *Metrics {
	return v.metrics
}

// Health returns a health check result for the instance.
func (v *viewerImpl) Health() HealthCheck {
	now := time.Now()
	st := v.Status()
	components := make(map[string]ComponentHealth, 3)

	var uptime time.Duration
	if st.Running {
		uptime = now.Sub(st.StartTime)
		components["instance"] = ComponentHealth{Status: HealthOK, Message: "Instance is running"}
	} else {
		components["instance"] = ComponentHealth{Status: HealthUnhealthy, Message: "Instance is not running"}
	}

	switch {
	case st.Renderer == "":
		components["renderer"] = ComponentHealth{Status: HealthUnhealthy, Message: "No renderer installed"}
	case strings.HasPrefix(st.StatusLine, "Render failed"):
		components["renderer"] = ComponentHealth{Status: HealthDegraded, Message: st.StatusLine}
	default:
		components["renderer"] = ComponentHealth{Status: HealthOK, Message: "Renderer " + st.Renderer}
	}

	if st.LastError != nil {
		components["errors"] = ComponentHealth{Status: HealthDegraded, Message: st.LastError.Error()}
	} else {
		components["errors"] = ComponentHealth{Status: HealthOK, Message: "No recent errors"}
	}

	status := worst(components)
	message := "All components healthy"
	switch {
	case !st.Running:
		message = "Instance is not running"
	case status != HealthOK:
		message = "Running with recent errors"
	}
	return HealthCheck{
		Status:     status,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Message:    message,
	}
}

// cleanup releases a session's resources.
func (v *viewerImpl) cleanup(sess *session) {
	if sess.watcher != nil {
		sess.watcher.Stop()
	}
	if sess.renderer != nil {
		sess.renderer.Close()
	}
}

// getError retrieves the last error.
func (v *viewerImpl) getError() error {
	if e := v.lastError.Load(); e != nil {
		if err, ok := e.(error); ok {
			return err
		}
	}
	return nil
}

// notifyError stores an error and invokes the error handler if registered.
func (v *viewerImpl) notifyError(err error) {
	v.lastError.Store(err)
	v.metrics.IncrementErrors()

	v.mu.RLock()
	handler := v.errorHandler
	v.mu.RUnlock()

	v.logger.Error("vdrm error", "error", err, "category", CategoryOf(err))

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					v.logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}

	v.emitEvent(EventError, err.Error())
}

// emitEvent sends an event to the event handler if configured.
func (v *viewerImpl) emitEvent(eventType EventType, message string) {
	v.metrics.IncrementEventsEmitted()

	v.mu.RLock()
	handler := v.eventHandler
	v.mu.RUnlock()

	if handler == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				v.logger.Error("event handler panicked", "panic", r, "event", eventType.String())
			}
		}()
		handler(Event{Type: eventType, Timestamp: time.Now(), Message: message})
	}()
}
