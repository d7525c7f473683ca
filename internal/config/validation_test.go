package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{"defaults", func(*Config) {}, nil},
		{"window", func(c *Config) { c.Window.Width = 0 }, []string{"window"}},
		{"canvas", func(c *Config) { c.Canvas.Height = -1 }, []string{"canvas"}},
		{"variant", func(c *Config) { c.Panel.Variant = "dual" }, []string{"variant"}},
		{"screen index", func(c *Config) { c.Controls.Screens = []int{0, 3} }, []string{"index 3"}},
		{"duplicate screen", func(c *Config) { c.Controls.Screens = []int{1, 1} }, []string{"listed twice"}},
		{"range", func(c *Config) { c.Controls.MinAngle = 600 }, []string{"min_angle"}},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, []string{"log_level"}},
		{
			"several at once",
			func(c *Config) { c.Window.Height = 0; c.Log.Level = "x" },
			[]string{"window", "log_level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want an error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q should mention %q", err, w)
				}
			}
		})
	}
}
