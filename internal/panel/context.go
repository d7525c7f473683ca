// Package panel wires a host UI to the external renderer. A Panel owns four
// small components built on a shared Context: the Viewport sizes the canvas,
// Controls turn control values into Params, the Probe shows data-space
// coordinates under the pointer and the Dispatcher calls the renderer.
//
// Every method must be called from the host's UI thread. Nothing suspends
// mid-call and a render runs to completion before the next event is handled.
package panel

import (
	"errors"
	"time"

	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// ErrMissingElements is returned by New when the document lacks roles the
// capabilities need.
var ErrMissingElements = errors.New("document is missing elements")

// Logger is the structured logger used by the panel.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Observer receives a callback for every redraw and pointer query.
type Observer interface {
	Redrawn(mode Mode, elapsed time.Duration, err error)
	Probed(hit bool)
}

// Context is shared by the panel's components. It replaces module-level
// globals: the document, the installed renderer and the host callbacks.
type Context struct {
	Doc      ui.Document
	Caps     Capabilities
	Renderer *chart.Binding
	Logger   Logger
	// HiDPI multiplies the canvas backing store by the device pixel ratio.
	HiDPI bool
	// Now is the clock used to time renderer calls.
	Now func() time.Time
	// Observer may be nil.
	Observer Observer
	// OnError receives errors from event-driven redraws. It may be nil.
	OnError func(error)
}

func (c *Context) element(role ui.Role) ui.Element {
	return c.Doc.Element(role)
}

func (c *Context) reportError(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}
