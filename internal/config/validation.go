package config

import (
	"fmt"
	"strings"
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult collects every problem found in a Config.
type ValidationResult struct {
	Errors []ValidationError
}

// AddError records a problem with field.
func (vr *ValidationResult) AddError(field, format string, args ...any) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns nil when there are no errors, otherwise one error listing all.
func (vr *ValidationResult) Err() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, len(vr.Errors))
	for i, e := range vr.Errors {
		messages[i] = e.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks cfg and reports all problems at once.
func Validate(cfg *Config) error {
	var vr ValidationResult

	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		vr.AddError("window", "size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		vr.AddError("canvas", "size must be positive, got %dx%d", cfg.Canvas.Width, cfg.Canvas.Height)
	}

	caps, err := cfg.Capabilities()
	if err != nil {
		vr.AddError("variant", "%v", err)
	} else if err := caps.Validate(); err != nil {
		vr.AddError("variant", "%v", err)
	}
	if cfg.Panel.NumScreens <= 0 {
		vr.AddError("num_screens", "must be positive, got %d", cfg.Panel.NumScreens)
	}

	seen := make(map[int]bool)
	for _, s := range cfg.Controls.Screens {
		if s < 0 || s >= cfg.Panel.NumScreens {
			vr.AddError("screens", "index %d outside 0..%d", s, cfg.Panel.NumScreens-1)
		}
		if seen[s] {
			vr.AddError("screens", "index %d listed twice", s)
		}
		seen[s] = true
	}
	if cfg.Controls.MinAngle > cfg.Controls.MaxAngle {
		vr.AddError("min_angle", "%v is greater than max_angle %v", cfg.Controls.MinAngle, cfg.Controls.MaxAngle)
	}
	if !logLevels[strings.ToLower(cfg.Log.Level)] {
		vr.AddError("log_level", "unknown level %q", cfg.Log.Level)
	}

	return vr.Err()
}
