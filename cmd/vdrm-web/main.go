//go:build js && wasm

// Command vdrm-web runs the control panel in a browser. The page's bootstrap
// script calls vdrmSetup(Chart) with the plotting module and then
// vdrmMain(variant), where variant is "range", "screens" or "combined".
package main

import (
	"fmt"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/panel"
	"github.com/opd-ai/go-vdrm/internal/web"
)

// Version information (set during build)
var Version = "dev"

type app struct {
	logger  *slog.Logger
	binding chart.Binding
	panel   *panel.Panel
}

func main() {
	a := &app{logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	js.Global().Set("vdrmSetup", js.FuncOf(a.setup))
	js.Global().Set("vdrmMain", js.FuncOf(a.main))
	a.logger.Info("vdrm-web ready", "version", Version)

	select {}
}

// setup installs the JS plotting module. It returns an error string, or null.
func (a *app) setup(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return "vdrmSetup: missing Chart"
	}
	c, err := web.NewChart(args[0])
	if err != nil {
		return a.fail("vdrmSetup", err)
	}
	if err := a.binding.Install(c); err != nil {
		return a.fail("vdrmSetup", err)
	}
	a.logger.Info("renderer installed")
	return js.Null()
}

// main builds and starts the panel for the page. It returns an error string,
// or null.
func (a *app) main(this js.Value, args []js.Value) any {
	if a.panel != nil {
		return a.fail("vdrmMain", panel.ErrAlreadyStarted)
	}
	variant := "range"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		variant = args[0].String()
	}
	caps, err := panel.ParseVariant(variant)
	if err != nil {
		return a.fail("vdrmMain", err)
	}

	p, err := panel.New(web.NewDocument(), caps,
		panel.WithLogger(a.logger),
		panel.WithBinding(&a.binding),
		panel.WithErrorHandler(func(err error) { a.logger.Error("redraw failed", "error", err) }),
	)
	if err != nil {
		return a.fail("vdrmMain", err)
	}
	if err := p.Start(); err != nil {
		return a.fail("vdrmMain", err)
	}
	a.panel = p
	a.logger.Info("panel started", "variant", variant)
	return js.Null()
}

func (a *app) fail(op string, err error) any {
	a.logger.Error(op+" failed", "error", err)
	return fmt.Sprintf("%s: %v", op, err)
}
