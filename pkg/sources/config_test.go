package sources

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/sudorandom/event-viewer/pkg/eventview"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"ff0000", color.RGBA{255, 0, 0, 255}, false},
		{"#00f", color.RGBA{0, 0, 255, 255}, false},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q): expected error=%v, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	writeFile(t, path, []byte(`
events: data/events.bin
t_offset: 42
frames:
  dir: data/seq
viewer:
  mode: 3d
  time_window_us: 500
  rgb_alpha: 1.5
  bounding_box: false
colors:
  on: "#00ff00"
`))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.TOffset == nil || *cfg.TOffset != 42 {
		t.Errorf("Expected t_offset 42, got %v", cfg.TOffset)
	}
	if cfg.Viewer.Width != 1280 || cfg.Frames.Timestamps != "timestamps.txt" {
		t.Errorf("Expected defaults to survive, got width %d timestamps %q", cfg.Viewer.Width, cfg.Frames.Timestamps)
	}

	p, err := cfg.Palette()
	if err != nil {
		t.Fatal(err)
	}
	if p.On != (color.RGBA{0, 255, 0, 255}) || p.Background != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Unexpected palette %+v", p)
	}

	s := cfg.ViewerState(eventview.Volumetric{})
	if s.TimeWindowUS != eventview.MinTimeWindowUS {
		t.Errorf("Expected window clamped to %v, got %v", eventview.MinTimeWindowUS, s.TimeWindowUS)
	}
	if s.RGBAlpha != 1 {
		t.Errorf("Expected RGB alpha clamped to 1, got %v", s.RGBAlpha)
	}
	if s.ShowBoundingBox {
		t.Errorf("Expected bounding box disabled")
	}

	fo, ok := cfg.FrameOptions()
	if !ok || fo.Dir != "data/seq" || fo.Extension != ".png" {
		t.Errorf("Unexpected frame options %+v (ok=%v)", fo, ok)
	}
}

func TestConfigDefaultsPerMode(t *testing.T) {
	cfg := DefaultConfig()
	if s := cfg.ViewerState(eventview.Planar{}); s.TimeWindowUS != 20000 || s.RGBAlpha != 0.7 {
		t.Errorf("Unexpected 2d defaults %+v", s)
	}
	if s := cfg.ViewerState(eventview.Volumetric{}); s.TimeWindowUS != 2000000 || s.RGBAlpha != 0.8 || !s.ShowBoundingBox {
		t.Errorf("Unexpected 3d defaults %+v", s)
	}
	if _, ok := cfg.FrameOptions(); ok {
		t.Errorf("Expected no frame options without a directory")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no events", func(c *Config) { c.Events = "" }},
		{"bad mode", func(c *Config) { c.Viewer.Mode = "4d" }},
		{"bad colour", func(c *Config) { c.Colors.Off = "blue" }},
		{"zero tps", func(c *Config) { c.Viewer.TPS = 0 }},
		{"negative speed", func(c *Config) { c.Viewer.Speed = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Events = "events.txt"
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	cfg := DefaultConfig()
	if err := ParseConfig([]byte("viewer:\n  colour: red\n"), &cfg); err == nil {
		t.Errorf("Expected error for unknown key")
	}
	if err := ParseConfig(nil, &cfg); err != nil {
		t.Errorf("Expected empty document to be accepted, got %v", err)
	}
}
