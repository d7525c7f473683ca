// Package config provides configuration parsing for the vdrm control panel.
// Configuration files are Lua scripts that assign a vdrm.config table.
package config

import (
	"github.com/opd-ai/go-vdrm/internal/panel"
)

// Config is the complete panel configuration.
type Config struct {
	Window   WindowConfig
	Canvas   CanvasConfig
	Panel    PanelConfig
	Controls ControlsConfig
	Renderer RendererConfig
	Log      LogConfig
	// Watch reloads the configuration and the renderer script when they
	// change on disk.
	Watch bool
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
	// Colors are CSS-style names or hex values. Empty keeps the built-in theme.
	BackgroundColor string
	ForegroundColor string
	AccentColor     string
}

// CanvasConfig holds the canvas's initial backing size and scaling.
type CanvasConfig struct {
	// Width and Height set the original aspect ratio.
	Width  int
	Height int
	// HiDPI applies the device pixel ratio to the backing store.
	HiDPI bool
}

// PanelConfig selects the panel variant.
type PanelConfig struct {
	// Variant is one of "range", "screens" or "combined".
	Variant    string
	NumScreens int
	// PlotType is the initial selector value for the combined variant.
	PlotType string
}

// ControlsConfig holds initial control values in control units.
type ControlsConfig struct {
	Angle    float64
	Angle2D  float64
	Pitch    float64
	Yaw      float64
	MinAngle float64
	MaxAngle float64
	ShowAll  bool
	// Screens lists the initially checked screen indices.
	Screens []int
}

// RendererConfig configures the Lua renderer.
type RendererConfig struct {
	// Script is the renderer script path. Empty selects the built-in demo.
	Script string
	// CPULimit and MemoryLimit bound each renderer call. Zero means the
	// runtime default.
	CPULimit    uint64
	MemoryLimit uint64
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string
	JSON  bool
}

// Capabilities returns the capability descriptor for the configured variant.
func (c *Config) Capabilities() (panel.Capabilities, error) {
	caps, err := panel.ParseVariant(c.Panel.Variant)
	if err != nil {
		return panel.Capabilities{}, err
	}
	if c.Panel.NumScreens > 0 {
		caps.NumScreens = c.Panel.NumScreens
	}
	return caps, nil
}

// Initial returns the starting control values. parentWidth is the width of
// the area the canvas is laid out in.
func (c *Config) Initial(parentWidth float64) panel.Initial {
	screens := make([]int, len(c.Controls.Screens))
	copy(screens, c.Controls.Screens)
	return panel.Initial{
		Angle:        c.Controls.Angle,
		Angle2D:      c.Controls.Angle2D,
		Pitch:        c.Controls.Pitch,
		Yaw:          c.Controls.Yaw,
		MinAngle:     c.Controls.MinAngle,
		MaxAngle:     c.Controls.MaxAngle,
		ShowAll:      c.Controls.ShowAll,
		Screens:      screens,
		PlotType:     c.Panel.PlotType,
		CanvasWidth:  c.Canvas.Width,
		CanvasHeight: c.Canvas.Height,
		ParentWidth:  parentWidth,
	}
}
