package vdrm

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"

	"github.com/opd-ai/go-vdrm/internal/config"
)

// Viewer is an embedded vdrm control panel with full lifecycle control.
// It is safe for concurrent use from multiple goroutines.
type Viewer interface {
	// Start builds the panel, installs the renderer and draws once. In
	// window mode it then runs the window loop in the background.
	// Returns an error if already running or if initialization fails.
	Start() error

	// Stop shuts the instance down and waits for its goroutines.
	// Safe to call multiple times; subsequent calls are no-ops.
	Stop() error

	// Restart performs a stop followed by a start.
	// Configuration is reloaded from the original source.
	Restart() error

	// ReloadConfig reloads the configuration without stopping. The renderer
	// script follows the new configuration. A change of
	// variant, canvas or window settings returns ErrRestartRequired and
	// leaves the previous configuration active.
	ReloadConfig() error

	// ReloadRenderer recompiles the renderer script and redraws. The
	// installed renderer keeps its identity; only its script changes.
	ReloadRenderer() error

	// Redraw redraws the canvas with the current control values.
	Redraw() error

	// Snapshot writes the canvas as PNG.
	Snapshot(w io.Writer) error

	// IsRunning returns true if the instance is currently running.
	IsRunning() bool

	// Status returns detailed status information about the instance.
	Status() Status

	// SetErrorHandler registers a callback for runtime errors. Errors
	// passed to it are *CategorizedError values. Panics in the handler
	// are recovered.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)

	// Health returns a health check result for the instance.
	Health() HealthCheck

	// Metrics returns the metrics collector for this instance.
	Metrics() *Metrics
}

func resolveOptions(opts *Options) Options {
	if opts == nil {
		return DefaultOptions()
	}
	return *opts
}

// New creates a Viewer from a configuration file on disk. The instance is
// created but not started; call Start() to begin operation.
//
// Example:
//
//	v, err := vdrm.New("/home/user/.config/vdrm/panel.lua", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer v.Stop()
//	if err := v.Start(); err != nil {
//		log.Fatal(err)
//	}
func New(configPath string, opts *Options) (Viewer, error) {
	cfg, err := config.ParseFile(configPath)
	if err != nil {
		return nil, NewCategorizedError(fmt.Errorf("parse config: %w", err), ErrorCategoryConfig, SeverityCritical)
	}

	return newViewer(cfg, resolveOptions(opts), source{
		name: configPath,
		path: configPath,
		load: func() (*config.Config, error) { return config.ParseFile(configPath) },
	}), nil
}

// NewFromFS creates a Viewer using a configuration from fsys. A relative
// renderer script path is read from fsys too. Files in fsys are never
// watched.
//
// Example:
//
//	//go:embed panels/*
//	var panels embed.FS
//
//	v, err := vdrm.NewFromFS(panels, "panels/combined.lua", nil)
func NewFromFS(fsys fs.FS, configPath string, opts *Options) (Viewer, error) {
	cfg, err := config.ParseFromFS(fsys, configPath)
	if err != nil {
		return nil, NewCategorizedError(fmt.Errorf("parse config from FS: %w", err), ErrorCategoryConfig, SeverityCritical)
	}

	return newViewer(cfg, resolveOptions(opts), source{
		name: "embedded:" + configPath,
		fsys: fsys,
		load: func() (*config.Config, error) { return config.ParseFromFS(fsys, configPath) },
	}), nil
}

// NewFromReader creates a Viewer from configuration content read from r.
// The content is read once and kept for Restart.
//
// Example:
//
//	cfg := strings.NewReader(`vdrm.config = { variant = "combined" }`)
//	v, err := vdrm.NewFromReader(cfg, &vdrm.Options{Headless: true})
func NewFromReader(r io.Reader, opts *Options) (Viewer, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := config.ParseReader(bytes.NewReader(content))
	if err != nil {
		return nil, NewCategorizedError(fmt.Errorf("parse config: %w", err), ErrorCategoryConfig, SeverityCritical)
	}

	return newViewer(cfg, resolveOptions(opts), source{
		name: "reader",
		load: func() (*config.Config, error) { return config.ParseReader(bytes.NewReader(content)) },
	}), nil
}
