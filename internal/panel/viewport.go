package panel

// canvasFraction is the share of the parent's width the canvas occupies.
const canvasFraction = 0.8

// ParentWidthFor returns the parent width at which a resize keeps the canvas
// canvasWidth wide.
func ParentWidthFor(canvasWidth float64) float64 {
	return canvasWidth / canvasFraction
}

// Geometry is the result of a resize.
type Geometry struct {
	// BackingWidth and BackingHeight are the canvas's logical pixels.
	BackingWidth, BackingHeight int
	// DisplayWidth and DisplayHeight are the displayed size.
	DisplayWidth, DisplayHeight float64
	// DevicePixelRatio is what the document reported.
	DevicePixelRatio float64
}

// Viewport keeps the canvas at a fixed share of its parent's width.
type Viewport struct {
	ctx    *Context
	aspect float64
}

// NewViewport captures the canvas's aspect ratio from its current backing
// size. Later resizes preserve that ratio.
func NewViewport(ctx *Context) *Viewport {
	aspect := 1.0
	if w, h := ctx.Doc.Canvas().Size(); w > 0 && h > 0 {
		aspect = float64(w) / float64(h)
	}
	return &Viewport{ctx: ctx, aspect: aspect}
}

// AspectRatio returns width divided by height.
func (v *Viewport) AspectRatio() float64 {
	return v.aspect
}

// Resize recomputes the canvas's backing and displayed size.
func (v *Viewport) Resize() Geometry {
	canvas := v.ctx.Doc.Canvas()
	dpr := v.ctx.Doc.DevicePixelRatio()
	if dpr <= 0 {
		dpr = 1
	}

	size := canvas.ParentWidth() * canvasFraction
	g := Geometry{
		DisplayWidth:     size,
		DisplayHeight:    size / v.aspect,
		DevicePixelRatio: dpr,
	}
	scale := 1.0
	if v.ctx.HiDPI {
		scale = dpr
	}
	g.BackingWidth = int(g.DisplayWidth * scale)
	g.BackingHeight = int(g.DisplayHeight * scale)

	canvas.SetDisplaySize(g.DisplayWidth, g.DisplayHeight)
	canvas.SetSize(g.BackingWidth, g.BackingHeight)

	v.ctx.Logger.Debug("canvas resized",
		"width", g.BackingWidth, "height", g.BackingHeight,
		"dpr", dpr, "hidpi", v.ctx.HiDPI)
	return g
}
