package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/opd-ai/go-vdrm/internal/ui"
)

// ErrGameTerminated is returned when the game loop is terminated via context cancellation.
var ErrGameTerminated = errors.New("game terminated")

// taskQueueSize bounds the number of pending posted tasks.
const taskQueueSize = 64

// ErrorHandler is a function type for handling errors during game updates.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "update error: %v\n", err)
}

// Game implements ebiten.Game. It owns the UI thread: document events,
// redraws and posted tasks all run inside Update.
type Game struct {
	config       Config
	doc          *ui.Memory
	layout       *Layout
	textRenderer TextRendererInterface
	metrics      *FrameMetrics
	errorHandler ErrorHandler
	ctx          context.Context
	tasks        chan func()

	canvasImage   *ebiten.Image
	width, height int
	resized       bool

	active      Widget
	down        bool
	cursorX     float64
	cursorY     float64
	cursorKnown bool

	mu      sync.RWMutex
	running bool
}

// NewGame creates a Game showing doc.
func NewGame(config Config, doc *ui.Memory) *Game {
	return NewGameWithRenderer(config, doc, NewTextRenderer())
}

// NewGameWithRenderer creates a Game with a custom text renderer.
// This is useful for testing.
func NewGameWithRenderer(config Config, doc *ui.Memory, tr TextRendererInterface) *Game {
	return &Game{
		config:       config,
		doc:          doc,
		layout:       NewLayout(doc, config.SidebarWidth),
		textRenderer: tr,
		metrics:      NewFrameMetrics(),
		errorHandler: DefaultErrorHandler,
		tasks:        make(chan func(), taskQueueSize),
		width:        config.Width,
		height:       config.Height,
	}
}

// SetErrorHandler sets a custom error handler for update errors.
// If nil is passed, errors will be silently ignored.
func (g *Game) SetErrorHandler(handler ErrorHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errorHandler = handler
}

// SetContext sets a context for the game loop. When the context is cancelled,
// the game loop will terminate gracefully.
func (g *Game) SetContext(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctx = ctx
}

// Post queues fn to run on the UI thread at the start of the next Update.
// It reports false if the queue is full.
func (g *Game) Post(fn func()) bool {
	select {
	case g.tasks <- fn:
		return true
	default:
		return false
	}
}

// PanelLayout returns the widget layout.
func (g *Game) PanelLayout() *Layout {
	return g.layout
}

// Metrics returns the frame timing tracker.
func (g *Game) Metrics() *FrameMetrics {
	return g.metrics
}

// ParentWidth is the canvas parent width for the current window size.
func (g *Game) ParentWidth() float64 {
	return g.layout.ParentWidth(g.width)
}

// Update implements ebiten.Game.Update.
func (g *Game) Update() error {
	g.mu.RLock()
	ctx := g.ctx
	g.mu.RUnlock()
	if ctx != nil {
		select {
		case <-ctx.Done():
			return ErrGameTerminated
		default:
		}
	}

	g.runTasks()
	g.applyResize()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrGameTerminated
	}

	x, y := ebiten.CursorPosition()
	g.pointer(float64(x), float64(y), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	g.layout.Arrange()
	return nil
}

func (g *Game) runTasks() {
	for {
		select {
		case fn := <-g.tasks:
			g.safely(fn)
		default:
			return
		}
	}
}

// safely runs fn and reports a panic to the error handler.
func (g *Game) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.report(fmt.Errorf("task panicked: %v", r))
		}
	}()
	fn()
}

func (g *Game) report(err error) {
	g.mu.RLock()
	h := g.errorHandler
	g.mu.RUnlock()
	if h != nil {
		h(err)
	}
}

// applyResize updates the canvas parent width and fires a window resize
// after the outside size changed.
func (g *Game) applyResize() {
	if !g.resized {
		return
	}
	g.resized = false
	if c := g.doc.MemCanvas(); c != nil {
		c.SetParentWidth(g.ParentWidth())
	}
	g.doc.Dispatch(ui.Event{Type: ui.EventResize, Target: ui.RoleWindow})
}

// pointer feeds one frame of mouse state into the widgets and the document.
func (g *Game) pointer(x, y float64, down bool) {
	if !g.cursorKnown || x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY, g.cursorKnown = x, y, true
		g.doc.Dispatch(g.layout.PointerEvent(x, y))
	}

	switch {
	case down && !g.down:
		if w := g.layout.WidgetAt(x, y); w != nil {
			g.active = w
			g.dispatch(w.Press(x, y))
		}
	case down && g.active != nil:
		g.dispatch(g.active.Drag(x, y))
	case !down && g.active != nil:
		g.dispatch(g.active.Release())
		g.active = nil
	}
	g.down = down
}

func (g *Game) dispatch(events []ui.Event) {
	for _, ev := range events {
		g.doc.Dispatch(ev)
	}
}

// Draw implements ebiten.Game.Draw.
func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	th := g.config.Theme

	screen.Fill(th.Background)
	vector.DrawFilledRect(screen, 0, 0, float32(g.layout.SidebarWidth()), float32(g.height), th.Sidebar, false)
	for _, w := range g.layout.Visible() {
		w.Draw(screen, th, g.textRenderer)
	}
	g.drawCanvas(screen)

	if status := g.doc.Get(ui.RoleCoord); status != nil {
		r := g.layout.Status()
		g.textRenderer.DrawText(screen, status.Text(), r.X, r.Y, th.Foreground)
	}
	g.metrics.RecordFrame(time.Since(start))
}

// drawCanvas uploads the canvas backing store and draws it scaled to its
// displayed size.
func (g *Game) drawCanvas(screen *ebiten.Image) {
	c := g.doc.MemCanvas()
	if c == nil {
		return
	}
	img := c.Image()
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}
	if g.canvasImage == nil || g.canvasImage.Bounds().Dx() != w || g.canvasImage.Bounds().Dy() != h {
		if g.canvasImage != nil {
			g.canvasImage.Deallocate()
		}
		g.canvasImage = ebiten.NewImage(w, h)
	}
	g.canvasImage.WritePixels(img.Pix)

	r := g.layout.Canvas()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.W/float64(w), r.H/float64(h))
	op.GeoM.Translate(r.X, r.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.canvasImage, op)
}

// Layout implements ebiten.Game.Layout. The logical screen follows the
// window so resizing reflows the panel.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.resized = true
	}
	return outsideWidth, outsideHeight
}

// Config returns the current configuration.
func (g *Game) Config() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config
}

// Run starts the Ebiten game loop.
// This function blocks until the window is closed.
func (g *Game) Run() error {
	ebiten.SetWindowSize(g.config.Width, g.config.Height)
	ebiten.SetWindowTitle(g.config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	err := ebiten.RunGame(g)

	g.mu.Lock()
	g.running = false
	g.mu.Unlock()

	if errors.Is(err, ErrGameTerminated) {
		return nil
	}
	return err
}

// IsRunning returns whether the game loop is currently running.
func (g *Game) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}
