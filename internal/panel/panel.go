package panel

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("panel already started")

// Option configures a Panel.
type Option func(*Context)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithHiDPI scales the backing store by the device pixel ratio.
func WithHiDPI(enabled bool) Option {
	return func(c *Context) { c.HiDPI = enabled }
}

// WithClock replaces time.Now for render timing.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		if now != nil {
			c.Now = now
		}
	}
}

// WithObserver registers redraw and probe callbacks.
func WithObserver(o Observer) Option {
	return func(c *Context) { c.Observer = o }
}

// WithErrorHandler receives errors from event-driven redraws.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Context) { c.OnError = fn }
}

// WithBinding shares an existing renderer binding.
func WithBinding(b *chart.Binding) Option {
	return func(c *Context) {
		if b != nil {
			c.Renderer = b
		}
	}
}

// Panel is one configured control panel.
type Panel struct {
	ctx        *Context
	viewport   *Viewport
	controls   *Controls
	probe      *Probe
	dispatcher *Dispatcher
	started    bool
}

// New builds a panel over doc. It fails if caps are inconsistent or doc lacks
// an element caps need.
func New(doc ui.Document, caps Capabilities, opts ...Option) (*Panel, error) {
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}
	if err := caps.checkDocument(doc); err != nil {
		return nil, err
	}

	ctx := &Context{
		Doc:      doc,
		Caps:     caps,
		Renderer: &chart.Binding{},
		Logger:   nopLogger{},
		Now:      time.Now,
	}
	for _, opt := range opts {
		opt(ctx)
	}

	controls := NewControls(ctx)
	return &Panel{
		ctx:        ctx,
		viewport:   NewViewport(ctx),
		controls:   controls,
		probe:      NewProbe(ctx),
		dispatcher: NewDispatcher(ctx, controls),
	}, nil
}

// Context returns the shared context.
func (p *Panel) Context() *Context { return p.ctx }

// Viewport returns the viewport manager.
func (p *Panel) Viewport() *Viewport { return p.viewport }

// Controls returns the control panel adapter.
func (p *Panel) Controls() *Controls { return p.controls }

// Probe returns the pointer probe.
func (p *Panel) Probe() *Probe { return p.probe }

// Dispatcher returns the redraw dispatcher.
func (p *Panel) Dispatcher() *Dispatcher { return p.dispatcher }

// Install hands the renderer to the panel. It may be called once. A redraw
// requested earlier runs before Install returns.
func (p *Panel) Install(r chart.Renderer) error {
	if err := p.ctx.Renderer.Install(r); err != nil {
		return err
	}
	p.ctx.Logger.Info("renderer installed", "type", fmt.Sprintf("%T", r))
	return nil
}

// Start registers the event listeners, sizes the canvas and draws once.
// The initial redraw's ErrRendererNotInstalled is not an error for Start.
func (p *Panel) Start() error {
	if p.started {
		return ErrAlreadyStarted
	}
	if err := p.listen(); err != nil {
		return err
	}
	p.started = true
	if err := p.Resize(); err != nil && !errors.Is(err, chart.ErrRendererNotInstalled) {
		return err
	}
	return nil
}

// Resize recomputes the canvas size and redraws.
func (p *Panel) Resize() error {
	p.viewport.Resize()
	return p.dispatcher.Redraw()
}

// Redraw redraws with the current control values.
func (p *Panel) Redraw() error {
	return p.dispatcher.Redraw()
}

func (p *Panel) listen() error {
	caps := p.ctx.Caps
	doc := p.ctx.Doc

	redraw := func(ui.Event) {
		if err := p.dispatcher.Redraw(); err != nil && !errors.Is(err, chart.ErrRendererNotInstalled) {
			p.ctx.reportError(err)
		}
	}
	resize := func(ui.Event) {
		if err := p.Resize(); err != nil && !errors.Is(err, chart.ErrRendererNotInstalled) {
			p.ctx.reportError(err)
		}
	}

	type binding struct {
		role ui.Role
		ev   ui.EventType
		h    ui.Handler
	}
	var bs []binding
	both := func(role ui.Role) {
		bs = append(bs, binding{role, ui.EventChange, redraw}, binding{role, ui.EventInput, redraw})
	}

	bs = append(bs, binding{ui.RoleShowAll, ui.EventChange, redraw})
	both(ui.RoleAngle)
	both(ui.RoleYaw)
	both(ui.RolePitch)
	if caps.AngleRange {
		both(ui.RoleMinAngle)
		both(ui.RoleMaxAngle)
	}
	if caps.Screens {
		bs = append(bs, binding{ui.RoleScreens3D, ui.EventChange, redraw})
	}
	if caps.ModeSwitch {
		bs = append(bs,
			binding{ui.RoleScreens2D, ui.EventChange, redraw},
			binding{ui.RolePlotType, ui.EventChange, redraw})
		if doc.Element(ui.RoleAngle2D) != nil {
			both(ui.RoleAngle2D)
		}
	}
	bs = append(bs,
		binding{ui.RoleWindow, ui.EventResize, resize},
		binding{ui.RoleWindow, ui.EventMouseMove, func(ev ui.Event) { p.probe.Handle(ev) }})

	for _, b := range bs {
		if err := doc.Listen(b.role, b.ev, b.h); err != nil {
			return fmt.Errorf("register listener: %w", err)
		}
	}
	return nil
}
