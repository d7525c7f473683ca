package panel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Mode selects the renderer entry point.
type Mode int

const (
	// ThreeD targets plot3d.
	ThreeD Mode = iota
	// TwoD targets plot2d.
	TwoD
)

// Plot-type selector values. Any value other than PlotType3D picks TwoD.
const (
	PlotType3D = "3d-plot"
	PlotType2D = "2d-plot"
)

// String returns a short name for the mode.
func (m Mode) String() string {
	switch m {
	case ThreeD:
		return "3d"
	case TwoD:
		return "2d"
	default:
		return "unknown"
	}
}

// ModeForPlotType maps a selector value to a mode.
func ModeForPlotType(value string) Mode {
	if value == PlotType3D {
		return ThreeD
	}
	return TwoD
}

// Params is built fresh from the controls on every redraw.
type Params struct {
	Mode Mode
	// Angle is nil when "show all" is checked in 3-D mode.
	Angle *float64
	// RawAngle is the angle field's value regardless of "show all".
	RawAngle float64
	// Pitch and Yaw are the slider values divided by 100.
	Pitch float64
	Yaw   float64
	// MinAngle and MaxAngle are set when the panel has range sliders.
	MinAngle *float64
	MaxAngle *float64
	// Screens holds checked screen indices in ascending order. It is nil
	// when the panel has no screen selectors.
	Screens []int
}

// parseNumber converts a control value the way JavaScript's Number() does:
// surrounding space is ignored, blank is 0, anything unparseable is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// formatNumber prints v like JavaScript's number-to-string conversion for the
// values a slider can produce.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatScreens(screens []int) string {
	parts := make([]string, len(screens))
	for i, s := range screens {
		parts[i] = strconv.Itoa(s)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// elapsedMillis rounds d up to whole milliseconds.
func elapsedMillis(d time.Duration) int64 {
	return int64(math.Ceil(float64(d) / float64(time.Millisecond)))
}

// FormatStatus renders the status line shown after a successful redraw.
func FormatStatus(p Params, elapsed time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "angle: %s", formatNumber(p.RawAngle))
	if p.Mode == ThreeD {
		if p.MinAngle != nil && p.MaxAngle != nil {
			fmt.Fprintf(&b, " in (%s..%s)", formatNumber(*p.MinAngle), formatNumber(*p.MaxAngle))
		}
		fmt.Fprintf(&b, " Pitch:%s, Yaw:%s", formatNumber(p.Pitch), formatNumber(p.Yaw))
	}
	if p.Screens != nil {
		fmt.Fprintf(&b, " Screens:%s", formatScreens(p.Screens))
	}
	fmt.Fprintf(&b, " Rendered in %dms", elapsedMillis(elapsed))
	return b.String()
}
