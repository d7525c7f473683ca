package panel

import (
	"fmt"

	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// OutOfRange is shown when the pointer is not over a plotted point.
const OutOfRange = "Mouse pointer is out of range"

// Probe shows the data-space point under the pointer.
type Probe struct {
	ctx *Context
}

// NewProbe returns a probe for ctx.
func NewProbe(ctx *Context) *Probe {
	return &Probe{ctx: ctx}
}

// FormatPoint renders p with three decimals.
func FormatPoint(p chart.DataPoint) string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}

// Logical maps pointer offsets on the displayed canvas into the backing
// store's coordinate space. ok is false while the canvas has no displayed
// area.
func (p *Probe) Logical(offsetX, offsetY float64) (x, y float64, ok bool) {
	canvas := p.ctx.Doc.Canvas()
	w, h := canvas.Size()
	dw, dh := canvas.DisplaySize()
	if dw <= 0 || dh <= 0 {
		return 0, 0, false
	}
	return offsetX * float64(w) / dw, offsetY * float64(h) / dh, true
}

// Handle updates the coordinate readout for a pointer event and returns the
// text it displayed.
func (p *Probe) Handle(ev ui.Event) string {
	text := OutOfRange
	hit := false

	if r := p.ctx.Renderer.Renderer(); r != nil && ev.Target == ui.RoleCanvas {
		if x, y, ok := p.Logical(ev.OffsetX, ev.OffsetY); ok {
			if pt, found := r.Coord(x, y); found {
				text = FormatPoint(pt)
				hit = true
			}
		}
	}

	p.ctx.element(ui.RoleCoord).SetText(text)
	if p.ctx.Observer != nil {
		p.ctx.Observer.Probed(hit)
	}
	return text
}
