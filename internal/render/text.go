package render

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomonobold"
)

// defaultFontSize is the default font size in points.
const defaultFontSize = 13.0

// lineSpacing is the line height as a multiple of the font size.
const lineSpacing = 1.2

// TextRendererInterface defines the interface for text rendering.
// This allows for mocking in tests.
type TextRendererInterface interface {
	DrawText(screen *ebiten.Image, textStr string, x, y float64, clr color.RGBA)
	MeasureText(textStr string) (width, height float64)
	LineHeight() float64
}

// TextRenderer draws monospace text through Ebiten's text package. Text is
// positioned by its top-left corner.
type TextRenderer struct {
	face *text.GoTextFace
	mu   sync.RWMutex
}

// NewTextRenderer creates a TextRenderer with the embedded Go Mono Bold font.
func NewTextRenderer() *TextRenderer {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(gomonobold.TTF))
	if err != nil {
		panic("failed to load embedded font: " + err.Error())
	}
	return &TextRenderer{face: &text.GoTextFace{Source: source, Size: defaultFontSize}}
}

// SetFontSize changes the font size. Non-positive sizes restore the default.
func (tr *TextRenderer) SetFontSize(size float64) {
	if size <= 0 {
		size = defaultFontSize
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.face = &text.GoTextFace{Source: tr.face.Source, Size: size}
}

// FontSize returns the current font size.
func (tr *TextRenderer) FontSize() float64 {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.face.Size
}

// DrawText renders textStr with its top-left corner at (x, y).
func (tr *TextRenderer) DrawText(screen *ebiten.Image, textStr string, x, y float64, clr color.RGBA) {
	tr.mu.RLock()
	face := tr.face
	tr.mu.RUnlock()

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = face.Size * lineSpacing
	text.Draw(screen, textStr, face, op)
}

// MeasureText returns the width and height of textStr.
func (tr *TextRenderer) MeasureText(textStr string) (width, height float64) {
	tr.mu.RLock()
	face := tr.face
	tr.mu.RUnlock()
	return text.Measure(textStr, face, face.Size*lineSpacing)
}

// LineHeight returns the height of a single line of text.
func (tr *TextRenderer) LineHeight() float64 {
	return tr.FontSize() * lineSpacing
}
