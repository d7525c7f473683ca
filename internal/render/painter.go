package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// pointSegments is the number of polygon edges used to approximate a disc.
const pointSegments = 24

// Painter draws primitives onto an RGBA image with anti-aliasing. It is the
// drawing backend for scripted renderers and does not depend on a window.
type Painter struct {
	img  *image.RGBA
	face font.Face
	mu   sync.Mutex
}

// NewPainter creates a Painter targeting img.
func NewPainter(img *image.RGBA) *Painter {
	return &Painter{img: img, face: basicfont.Face7x13}
}

// Size returns the target image size.
func (p *Painter) Size() (width, height int) {
	b := p.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear fills the whole image with c.
func (p *Painter) Clear(c color.RGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Line strokes a segment of the given width.
func (p *Painter) Line(x1, y1, x2, y2, width float64, c color.RGBA) {
	if !finite(x1, y1, x2, y2, width) {
		return
	}
	if width <= 0 {
		width = 1
	}
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		p.Point(x1, y1, width/2, c)
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	p.fill(c, func(z *vector.Rasterizer) {
		z.MoveTo(float32(x1+nx), float32(y1+ny))
		z.LineTo(float32(x2+nx), float32(y2+ny))
		z.LineTo(float32(x2-nx), float32(y2-ny))
		z.LineTo(float32(x1-nx), float32(y1-ny))
		z.ClosePath()
	})
}

// Point fills a disc centred on (x, y).
func (p *Painter) Point(x, y, radius float64, c color.RGBA) {
	if !finite(x, y, radius) {
		return
	}
	if radius <= 0 {
		radius = 0.5
	}
	p.fill(c, func(z *vector.Rasterizer) {
		z.MoveTo(float32(x+radius), float32(y))
		for i := 1; i < pointSegments; i++ {
			a := 2 * math.Pi * float64(i) / pointSegments
			z.LineTo(float32(x+radius*math.Cos(a)), float32(y+radius*math.Sin(a)))
		}
		z.ClosePath()
	})
}

// Text draws s with its baseline starting at (x, y).
func (p *Painter) Text(s string, x, y float64, c color.RGBA) {
	if !finite(x, y) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	d := font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(c),
		Face: p.face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	d.DrawString(s)
}

// MeasureText returns the advance width of s in pixels.
func (p *Painter) MeasureText(s string) float64 {
	return float64(font.MeasureString(p.face, s)) / 64
}

func (p *Painter) fill(c color.RGBA, path func(z *vector.Rasterizer)) {
	w, h := p.Size()
	if w <= 0 || h <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	path(z)
	z.Draw(p.img, p.img.Bounds(), image.NewUniform(c), p.img.Bounds().Min)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// UnitRGBA converts channel intensities in [0, 1] to a color, clamping
// out-of-range values.
func UnitRGBA(r, g, b, a float64) color.RGBA {
	return color.RGBA{R: unitByte(r), G: unitByte(g), B: unitByte(b), A: unitByte(a)}
}

func unitByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
