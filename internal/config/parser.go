package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ParseFile reads and parses a configuration file. A relative renderer path
// is resolved against the file's directory.
func ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := parse(path, content)
	if err != nil {
		return nil, err
	}
	if cfg.Renderer.Script != "" && !filepath.IsAbs(cfg.Renderer.Script) {
		cfg.Renderer.Script = filepath.Join(filepath.Dir(path), cfg.Renderer.Script)
	}
	return cfg, nil
}

// ParseFromFS reads and parses a configuration file from fsys. The renderer
// path stays relative to fsys.
func ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}
	return parse(path, content)
}

// ParseReader parses configuration content from r.
func ParseReader(r io.Reader) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse("config", content)
}

func parse(name string, content []byte) (*Config, error) {
	p := NewLuaParser(nil)
	defer p.Close()

	cfg, err := p.Parse(name, content)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
