// Package render hosts the control panel in a desktop window using Ebiten.
// It draws the controls from an in-memory document, turns mouse input into
// document events, and shows the canvas the renderer painted.
package render

import (
	"fmt"
	"image/color"
)

// Config holds the window configuration options.
type Config struct {
	// Width is the initial window width in pixels.
	Width int
	// Height is the initial window height in pixels.
	Height int
	// Title is the window title.
	Title string
	// SidebarWidth is the width of the control column.
	SidebarWidth float64
	// Theme holds the widget colors.
	Theme Theme
}

// Theme holds the colors used to draw the panel.
type Theme struct {
	Background color.RGBA
	Sidebar    color.RGBA
	Foreground color.RGBA
	Muted      color.RGBA
	Accent     color.RGBA
	Track      color.RGBA
}

// DefaultTheme returns the dark theme.
func DefaultTheme() Theme {
	return Theme{
		Background: color.RGBA{R: 18, G: 18, B: 24, A: 255},
		Sidebar:    color.RGBA{R: 28, G: 28, B: 36, A: 255},
		Foreground: color.RGBA{R: 225, G: 225, B: 230, A: 255},
		Muted:      color.RGBA{R: 120, G: 120, B: 130, A: 255},
		Accent:     color.RGBA{R: 70, G: 130, B: 180, A: 255},
		Track:      color.RGBA{R: 60, G: 60, B: 72, A: 255},
	}
}

// WithColors returns a copy of th with the given colors parsed by ParseColor.
// Empty strings keep the current value.
func (th Theme) WithColors(background, foreground, accent string) (Theme, error) {
	for _, c := range []struct {
		name  string
		value string
		dst   *color.RGBA
	}{
		{"background", background, &th.Background},
		{"foreground", foreground, &th.Foreground},
		{"accent", accent, &th.Accent},
	} {
		if c.value == "" {
			continue
		}
		parsed, err := ParseColor(c.value)
		if err != nil {
			return th, fmt.Errorf("%s color: %w", c.name, err)
		}
		*c.dst = parsed
	}
	th.Sidebar = Blend(th.Background, th.Foreground, 0.06)
	th.Muted = Blend(th.Background, th.Foreground, 0.5)
	th.Track = Blend(th.Background, th.Foreground, 0.2)
	return th, nil
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Width:        960,
		Height:       720,
		Title:        "vdrm panel",
		SidebarWidth: 280,
		Theme:        DefaultTheme(),
	}
}

// Validate checks if the Config has valid values.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("height must be positive, got %d", c.Height)
	}
	if c.SidebarWidth < 0 || c.SidebarWidth >= float64(c.Width) {
		return fmt.Errorf("sidebar width %v does not fit a %d px window", c.SidebarWidth, c.Width)
	}
	return nil
}
