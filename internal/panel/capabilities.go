package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-vdrm/internal/chart"
	"github.com/opd-ai/go-vdrm/internal/ui"
)

// Variant names accepted by ParseVariant.
const (
	VariantRange    = "range"
	VariantScreens  = "screens"
	VariantCombined = "combined"
)

// ErrModeSwitchWithoutScreens is returned by Capabilities.Validate when a
// mode switch is requested without screen selectors; plot2d needs them.
var ErrModeSwitchWithoutScreens = errors.New("mode switch requires screen selectors")

// Capabilities declares which optional controls a panel has.
type Capabilities struct {
	// AngleRange adds min/max angle sliders passed to plot3d.
	AngleRange bool
	// Screens adds per-screen checkbox groups.
	Screens bool
	// ModeSwitch adds the plot-type selector and the 2-D mode.
	ModeSwitch bool
	// NumScreens is the number of checkboxes in each screen group.
	NumScreens int
}

// RangeCapabilities is the 3-D panel with a fixed angle range.
func RangeCapabilities() Capabilities {
	return Capabilities{AngleRange: true, NumScreens: chart.NumScreens}
}

// ScreensCapabilities is the 3-D panel with screen selectors.
func ScreensCapabilities() Capabilities {
	return Capabilities{Screens: true, NumScreens: chart.NumScreens}
}

// CombinedCapabilities is the 2-D/3-D panel with a mode switch.
func CombinedCapabilities() Capabilities {
	return Capabilities{Screens: true, ModeSwitch: true, NumScreens: chart.NumScreens}
}

// ParseVariant returns the preset for name.
func ParseVariant(name string) (Capabilities, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case VariantRange:
		return RangeCapabilities(), nil
	case VariantScreens:
		return ScreensCapabilities(), nil
	case VariantCombined:
		return CombinedCapabilities(), nil
	default:
		return Capabilities{}, fmt.Errorf("unknown variant %q (expected %s, %s or %s)",
			name, VariantRange, VariantScreens, VariantCombined)
	}
}

// Validate checks that the combination of capabilities is usable.
func (c Capabilities) Validate() error {
	if c.ModeSwitch && !c.Screens {
		return ErrModeSwitchWithoutScreens
	}
	if c.Screens && c.NumScreens <= 0 {
		return fmt.Errorf("num_screens must be positive, got %d", c.NumScreens)
	}
	return nil
}

// RequiredRoles lists the roles a document must provide.
func (c Capabilities) RequiredRoles() []ui.Role {
	roles := []ui.Role{ui.RoleCoord, ui.RoleShowAll, ui.RoleAngle, ui.RolePitch, ui.RoleYaw}
	if c.AngleRange {
		roles = append(roles, ui.RoleMinAngle, ui.RoleMaxAngle)
	}
	if c.Screens {
		roles = append(roles, ui.RoleScreens3D)
	}
	if c.ModeSwitch {
		roles = append(roles, ui.RolePlotType, ui.RolePanel3D, ui.RolePanel2D, ui.RoleScreens2D)
	}
	return roles
}

// checkDocument reports every role doc is missing, plus the canvas.
func (c Capabilities) checkDocument(doc ui.Document) error {
	var missing []string
	if doc.Canvas() == nil {
		missing = append(missing, string(ui.RoleCanvas))
	}
	for _, role := range c.RequiredRoles() {
		if doc.Element(role) == nil {
			missing = append(missing, string(role))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingElements, strings.Join(missing, ", "))
	}
	return nil
}
