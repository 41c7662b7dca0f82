package sources

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sudorandom/event-viewer/pkg/eventview"
	"github.com/sudorandom/event-viewer/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Config is the file form of the viewer settings. Pointer fields are
// optional and fall back to the defaults of the selected viewer mode.
type Config struct {
	Events     string           `yaml:"events"`
	TOffset    *int64           `yaml:"t_offset"`
	Downsample int              `yaml:"downsample"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Frames     FramesConfig     `yaml:"frames"`
	Colors     ColorsConfig     `yaml:"colors"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Cache      CacheConfig      `yaml:"cache"`
}

type ResolutionConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type FramesConfig struct {
	Dir        string `yaml:"dir"`
	Timestamps string `yaml:"timestamps"`
	Images     string `yaml:"images"`
	Extension  string `yaml:"extension"`
}

type ColorsConfig struct {
	Background string `yaml:"background"`
	On         string `yaml:"on"`
	Off        string `yaml:"off"`
}

type ViewerConfig struct {
	Mode         string   `yaml:"mode"`
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	TPS          int      `yaml:"tps"`
	Speed        float64  `yaml:"speed"`
	TimeWindowUS *float64 `yaml:"time_window_us"`
	RGBAlpha     *float64 `yaml:"rgb_alpha"`
	EventAlpha   *float64 `yaml:"event_alpha"`
	DepthScale   *float64 `yaml:"depth_scale"`
	BoundingBox  *bool    `yaml:"bounding_box"`
	PointSize    float32  `yaml:"point_size"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

func DefaultConfig() Config {
	frames := DefaultFrameOptions("")
	return Config{
		Downsample: 1,
		Frames: FramesConfig{
			Timestamps: frames.Timestamps,
			Images:     frames.Images,
			Extension:  frames.Extension,
		},
		Colors: ColorsConfig{Background: "#ffffff", On: "#ff0000", Off: "#0000ff"},
		Viewer: ViewerConfig{
			Mode:      "2d",
			Width:     1280,
			Height:    720,
			TPS:       60,
			Speed:     1,
			PointSize: 2,
		},
		Cache: CacheConfig{Dir: utils.DefaultCacheDir},
	}
}

// LoadConfig reads a YAML file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := ParseConfig(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML into cfg, keeping the values of absent keys.
func ParseConfig(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the values that cannot be clamped.
func (c Config) Validate() error {
	var errs []error
	if c.Events == "" {
		errs = append(errs, errors.New("no events file given"))
	}
	if _, err := eventview.StrategyByName(c.Viewer.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	if c.Downsample < 0 {
		errs = append(errs, fmt.Errorf("downsample must not be negative, got %d", c.Downsample))
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", c.Viewer.Width, c.Viewer.Height))
	}
	if c.Viewer.TPS <= 0 {
		errs = append(errs, fmt.Errorf("tps must be positive, got %d", c.Viewer.TPS))
	}
	if c.Viewer.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed must be positive, got %g", c.Viewer.Speed))
	}
	if c.Resolution.Width < 0 || c.Resolution.Height < 0 {
		errs = append(errs, fmt.Errorf("invalid resolution %dx%d", c.Resolution.Width, c.Resolution.Height))
	}
	return errors.Join(errs...)
}

// Palette parses the configured colours.
func (c Config) Palette() (eventview.Palette, error) {
	var p eventview.Palette
	var err error
	if p.Background, err = ParseHexColor(c.Colors.Background); err != nil {
		return p, fmt.Errorf("colors.background: %w", err)
	}
	if p.On, err = ParseHexColor(c.Colors.On); err != nil {
		return p, fmt.Errorf("colors.on: %w", err)
	}
	if p.Off, err = ParseHexColor(c.Colors.Off); err != nil {
		return p, fmt.Errorf("colors.off: %w", err)
	}
	return p, nil
}

// ViewerState starts from the strategy defaults and applies the configured
// values through the clamping setters.
func (c Config) ViewerState(strategy eventview.ProjectionStrategy) eventview.ViewerState {
	s := strategy.DefaultState()
	v := c.Viewer
	if v.Speed > 0 {
		s.PlaybackSpeed = v.Speed
	}
	if v.TimeWindowUS != nil {
		s.SetTimeWindow(*v.TimeWindowUS)
	}
	if v.RGBAlpha != nil {
		s.SetRGBAlpha(*v.RGBAlpha)
	}
	if v.EventAlpha != nil {
		s.SetEventAlpha(*v.EventAlpha)
	}
	if v.DepthScale != nil {
		s.SetDepthScale(*v.DepthScale)
	}
	if v.BoundingBox != nil && strategy.HasBoundingBox() {
		s.ShowBoundingBox = *v.BoundingBox
	}
	return s
}

// FrameOptions reports the frame layout, or false when no frame directory
// is configured.
func (c Config) FrameOptions() (FrameOptions, bool) {
	if c.Frames.Dir == "" {
		return FrameOptions{}, false
	}
	return FrameOptions{
		Dir:        c.Frames.Dir,
		Timestamps: c.Frames.Timestamps,
		Images:     c.Frames.Images,
		Extension:  c.Frames.Extension,
	}, true
}

func (c Config) EventOptions(cache *DatasetCache) EventOptions {
	return EventOptions{
		Path:       c.Events,
		TOffset:    c.TOffset,
		Downsample: c.Downsample,
		CacheDir:   c.Cache.Dir,
		Cache:      cache,
	}
}

func (c Config) SensorResolution() eventview.Resolution {
	return eventview.Resolution{Width: c.Resolution.Width, Height: c.Resolution.Height}
}

// ParseHexColor accepts "#rrggbb", "#rgb" and the same without the hash.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
