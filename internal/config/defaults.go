package config

import (
	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/panel"
)

// Default values for configuration options.
const (
	DefaultWindowWidth  = 960
	DefaultWindowHeight = 720
	DefaultWindowTitle  = "vdrm panel"
	DefaultCanvasWidth  = 600
	DefaultCanvasHeight = 400
	// DefaultMaxAngle is the number of mirror angles per revolution.
	DefaultMaxAngle = 512
	DefaultPitch    = 50
	DefaultYaw      = 30
	DefaultLogLevel = "info"
)

// DefaultConfig returns a Config with every field set.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  DefaultWindowWidth,
			Height: DefaultWindowHeight,
			Title:  DefaultWindowTitle,
		},
		Canvas: CanvasConfig{
			Width:  DefaultCanvasWidth,
			Height: DefaultCanvasHeight,
		},
		Panel: PanelConfig{
			Variant:    panel.VariantCombined,
			NumScreens: chart.NumScreens,
			PlotType:   panel.PlotType3D,
		},
		Controls: ControlsConfig{
			Pitch:    DefaultPitch,
			Yaw:      DefaultYaw,
			MaxAngle: DefaultMaxAngle,
			Screens:  []int{0, 1, 2},
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}
