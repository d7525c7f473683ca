package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const snapshotConfig = `vdrm.config = {
  variant = "range",
  canvas_width = 80,
  canvas_height = 40,
}
`

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-v"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-v) = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), Version) {
		t.Errorf("stdout = %q, want version %q", stdout.String(), Version)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no config", nil, 1, "No configuration file specified"},
		{"missing config", []string{"-c", "/nonexistent/panel.lua"}, 1, "Configuration file not found"},
		{"unknown flag", []string{"-bogus"}, 2, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.wantCode {
				t.Errorf("run() = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestRunSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "panel.lua")
	if err := os.WriteFile(cfgPath, []byte(snapshotConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-c", cfgPath, "-snapshot", out, "-log-level", "error"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d, stderr = %s", code, stderr.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("snapshot is not a PNG file")
	}
	if !strings.Contains(stdout.String(), "angle:") {
		t.Errorf("stdout = %q, want the status line", stdout.String())
	}
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	f, err := parseFlags([]string{"-c", "p.lua", "-headless", "-watch", "-log-json"}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if f.configPath != "p.lua" || !f.headless || !f.watch || !f.logJSON {
		t.Errorf("parseFlags() = %+v", f)
	}
}
