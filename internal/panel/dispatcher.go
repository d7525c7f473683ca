package panel

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// Status line texts that are not produced by FormatStatus.
const (
	StatusWaiting      = "Waiting for renderer"
	statusFailedPrefix = "Render failed: "
)

// ErrRendererPanic wraps a panic recovered from a renderer call.
var ErrRendererPanic = errors.New("renderer panicked")

// Dispatcher is the single entry point for redraws.
type Dispatcher struct {
	ctx      *Context
	controls *Controls
	mode     Mode
	entered  bool
	pending  bool
}

// NewDispatcher returns a dispatcher reading from controls. A redraw asked
// for before the renderer is installed runs once installation happens.
func NewDispatcher(ctx *Context, controls *Controls) *Dispatcher {
	d := &Dispatcher{ctx: ctx, controls: controls}
	ctx.Renderer.OnReady(func(chart.Renderer) {
		if !d.pending {
			return
		}
		if err := d.Redraw(); err != nil {
			ctx.reportError(err)
		}
	})
	return d
}

// Mode returns the mode of the last redraw.
func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// Pending reports whether a redraw is waiting for the renderer.
func (d *Dispatcher) Pending() bool {
	return d.pending
}

// enter shows the sub-panel for mode and hides the other one.
func (d *Dispatcher) enter(mode Mode) {
	if d.entered && d.mode == mode {
		return
	}
	if d.ctx.Caps.ModeSwitch {
		d.ctx.element(ui.RolePanel3D).SetHidden(mode != ThreeD)
		d.ctx.element(ui.RolePanel2D).SetHidden(mode != TwoD)
	}
	if d.entered {
		d.ctx.Logger.Info("plot mode switched", "from", d.mode, "to", mode)
	}
	d.mode = mode
	d.entered = true
}

// Redraw reads the controls and calls the renderer entry point for the
// selected mode. The status line reports the parameters and the elapsed time,
// or the failure.
func (d *Dispatcher) Redraw() error {
	p := d.controls.Read()
	d.enter(p.Mode)
	status := d.ctx.element(ui.RoleCoord)

	r := d.ctx.Renderer.Renderer()
	if r == nil {
		d.pending = true
		status.SetText(StatusWaiting)
		d.ctx.Logger.Debug("redraw deferred until renderer is installed", "mode", p.Mode)
		return chart.ErrRendererNotInstalled
	}
	d.pending = false

	start := d.ctx.Now()
	err := d.plot(r, p)
	elapsed := d.ctx.Now().Sub(start)

	if d.ctx.Observer != nil {
		d.ctx.Observer.Redrawn(p.Mode, elapsed, err)
	}
	if err != nil {
		status.SetText(statusFailedPrefix + err.Error())
		d.ctx.Logger.Error("render failed", "mode", p.Mode, "error", err)
		return fmt.Errorf("plot%s: %w", p.Mode, err)
	}

	status.SetText(FormatStatus(p, elapsed))
	return nil
}

func (d *Dispatcher) plot(r chart.Renderer, p Params) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrRendererPanic, rec)
		}
	}()

	surface := d.ctx.Doc.Canvas()
	if p.Mode == TwoD {
		return r.Plot2D(surface, *p.Angle, p.Screens)
	}
	return r.Plot3D(surface, chart.Plot3DArgs{
		Angle:    p.Angle,
		Pitch:    p.Pitch,
		Yaw:      p.Yaw,
		MinAngle: p.MinAngle,
		MaxAngle: p.MaxAngle,
		Screens:  p.Screens,
	})
}
