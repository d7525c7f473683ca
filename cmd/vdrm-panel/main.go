// Package main provides the vdrm-panel command. It opens a desktop window
// with the vdrm control panel and canvas, driving a Lua renderer script,
// or renders a single frame to a PNG file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-vdrm/internal/config"
	"github.com/opd-ai/go-vdrm/internal/profiling"
	"github.com/opd-ai/go-vdrm/pkg/vdrm"
)

// Version is the current version of vdrm-panel.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

// exitPoll is how often the signal loop checks whether the window closed.
const exitPoll = 250 * time.Millisecond

type flags struct {
	configPath string
	version    bool
	snapshot   string
	headless   bool
	watch      bool
	logLevel   string
	logJSON    bool
	debug      bool
	cpuProfile string
	memProfile string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("vdrm-panel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "c", "", "Path to the Lua panel configuration")
	fs.BoolVar(&f.version, "v", false, "Print version and exit")
	fs.StringVar(&f.snapshot, "snapshot", "", "Render one frame headless and write it as PNG")
	fs.BoolVar(&f.headless, "headless", false, "Run without a window")
	fs.BoolVar(&f.watch, "watch", false, "Reload the configuration and renderer when they change")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.BoolVar(&f.logJSON, "log-json", false, "Write logs as JSON")
	fs.BoolVar(&f.debug, "debug", false, "Debug logging with source locations")
	fs.StringVar(&f.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&f.memProfile, "memprofile", "", "Write memory profile to file")
	err := fs.Parse(args)
	return f, err
}

func run(args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "vdrm-panel version %s\n", Version)
		return 0
	}

	if f.configPath == "" {
		fmt.Fprintln(stderr, "No configuration file specified. Use -c to specify a config file.")
		fmt.Fprintln(stderr, "Usage: vdrm-panel -c <panel.lua> [-snapshot out.png]")
		return 1
	}

	cfg, err := config.ParseFile(f.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "Configuration file not found: %s\n", f.configPath)
		} else {
			fmt.Fprintf(stderr, "Error reading configuration %s: %v\n", f.configPath, err)
		}
		return 1
	}

	profConfig := profiling.Config{
		CPUProfilePath: f.cpuProfile,
		MemProfilePath: f.memProfile,
	}
	profiler := profiling.New(profConfig)
	if profConfig.Enabled() {
		if err := profiler.Start(); err != nil {
			fmt.Fprintf(stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	logger := newLogger(f, cfg, stderr)
	opts := &vdrm.Options{
		Headless:    f.headless || f.snapshot != "",
		Logger:      logger,
		WatchConfig: f.watch,
	}

	v, err := vdrm.New(f.configPath, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating panel: %v\n", err)
		return 1
	}

	if f.snapshot != "" {
		return runSnapshot(v, f.snapshot, stdout, stderr)
	}

	v.SetErrorHandler(func(err error) {
		logger.Warn("runtime error", "error", err)
	})
	v.SetEventHandler(func(e vdrm.Event) {
		logger.Info(e.Message, "event", e.Type.String())
	})

	fmt.Fprintf(stdout, "vdrm-panel %s starting with config: %s\n", Version, f.configPath)
	if err := v.Start(); err != nil {
		fmt.Fprintf(stderr, "Failed to start: %v\n", err)
		return 1
	}

	return wait(v, logger, stderr)
}

// wait blocks until a termination signal arrives or the window closes.
// SIGHUP restarts the panel from its configuration file.
func wait(v vdrm.Viewer, logger vdrm.Logger, stderr io.Writer) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(exitPoll)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, restarting")
				if err := v.Restart(); err != nil {
					fmt.Fprintf(stderr, "Restart failed: %v\n", err)
				}
				continue
			}
			logger.Info("shutting down", "signal", sig.String())
			if err := v.Stop(); err != nil {
				fmt.Fprintf(stderr, "Stop error: %v\n", err)
				return 1
			}
			return 0
		case <-ticker.C:
			if !v.IsRunning() {
				st := v.Status()
				if st.LastError != nil {
					fmt.Fprintf(stderr, "Window closed: %v\n", st.LastError)
					return 1
				}
				return 0
			}
		}
	}
}

// runSnapshot starts the panel headless, writes one frame and stops.
func runSnapshot(v vdrm.Viewer, path string, stdout, stderr io.Writer) int {
	if err := v.Start(); err != nil {
		fmt.Fprintf(stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer func() {
		if err := v.Stop(); err != nil {
			fmt.Fprintf(stderr, "Stop error: %v\n", err)
		}
	}()

	if err := vdrm.WriteSnapshot(v, path); err != nil {
		fmt.Fprintf(stderr, "Snapshot failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: %s\n", path, v.Status().StatusLine)
	return 0
}

// newLogger builds the logger from flags, falling back to the
// configuration's log settings.
func newLogger(f flags, cfg *config.Config, w io.Writer) vdrm.Logger {
	if f.debug {
		return vdrm.DebugLogger()
	}
	level := cfg.Log.Level
	if f.logLevel != "" {
		level = f.logLevel
	}
	return vdrm.NewLogger(w, vdrm.ParseLevel(level), f.logJSON || cfg.Log.JSON)
}
