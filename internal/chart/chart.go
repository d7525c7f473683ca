// Package chart defines the contract between the control panel and the
// external plotting module. The panel never draws; it hands a Surface and
// normalized parameters to a Renderer and displays what comes back.
package chart

import (
	"errors"
	"image"
	"sync"
)

// NumScreens is the number of physical screens the volumetric display has.
const NumScreens = 3

var (
	// ErrRendererNotInstalled is returned when a redraw is requested before
	// the bootstrap routine installed a renderer.
	ErrRendererNotInstalled = errors.New("renderer not installed")

	// ErrRendererInstalled is returned on the second call to Binding.Install.
	ErrRendererInstalled = errors.New("renderer already installed")

	// ErrNilRenderer is returned when Install is called with a nil renderer.
	ErrNilRenderer = errors.New("renderer cannot be nil")

	// ErrUnsupportedSurface is returned by renderers that cannot draw on the
	// surface type a host passed in.
	ErrUnsupportedSurface = errors.New("unsupported surface")
)

// Surface is the drawing target handed to the renderer. Hosts provide the
// concrete type: a DOM canvas in the browser, a raster image elsewhere.
type Surface interface {
	// Size returns the backing-store size in logical pixels.
	Size() (width, height int)
}

// RasterSurface is a Surface backed by an in-memory RGBA image.
type RasterSurface interface {
	Surface
	// Image returns the backing store. Its bounds match Size.
	Image() *image.RGBA
}

// DataPoint is a point in the renderer's data space.
type DataPoint struct {
	X, Y float64
}

// Plot3DArgs carries the optional trailing arguments of plot3d.
type Plot3DArgs struct {
	// Angle is nil when every angle should be rendered.
	Angle *float64
	Pitch float64
	Yaw   float64
	// MinAngle and MaxAngle are set only by panels with range sliders.
	MinAngle *float64
	MaxAngle *float64
	// Screens is nil for panels without screen selectors.
	Screens []int
}

// Renderer is the external plotting module.
type Renderer interface {
	// Plot2D draws the top-down simulation for a single angle.
	Plot2D(s Surface, angle float64, screens []int) error
	// Plot3D draws the emulated volume.
	Plot3D(s Surface, args Plot3DArgs) error
	// Coord maps a logical canvas pixel to data space. ok is false when the
	// pixel is outside the plotted area or nothing has been drawn yet.
	Coord(x, y float64) (p DataPoint, ok bool)
}

// Binding holds the installed renderer. It is assigned once during bootstrap
// and read thereafter.
type Binding struct {
	mu       sync.RWMutex
	renderer Renderer
	onReady  []func(Renderer)
}

// Install sets the renderer. It fails if one is already installed.
// Callbacks registered with OnReady run after the lock is released.
func (b *Binding) Install(r Renderer) error {
	if r == nil {
		return ErrNilRenderer
	}

	b.mu.Lock()
	if b.renderer != nil {
		b.mu.Unlock()
		return ErrRendererInstalled
	}
	b.renderer = r
	ready := b.onReady
	b.onReady = nil
	b.mu.Unlock()

	for _, fn := range ready {
		fn(r)
	}
	return nil
}

// Renderer returns the installed renderer, or nil.
func (b *Binding) Renderer() Renderer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.renderer
}

// Installed reports whether a renderer has been installed.
func (b *Binding) Installed() bool {
	return b.Renderer() != nil
}

// OnReady registers fn to run once the renderer is installed. If it already
// is, fn runs immediately.
func (b *Binding) OnReady(fn func(Renderer)) {
	b.mu.Lock()
	if b.renderer == nil {
		b.onReady = append(b.onReady, fn)
		b.mu.Unlock()
		return
	}
	r := b.renderer
	b.mu.Unlock()
	fn(r)
}
