package sources

import (
	"fmt"
	"strconv"
)

// Overrides are the command-line settings shared by the viewer commands.
// Zero values (and -1 for the alphas) leave the configuration untouched.
type Overrides struct {
	Events     string  `arg:"" optional:"" help:"Event file (.txt/.csv/.bin/.evt, optionally .gz or .zst) or http(s) URL."`
	Config     string  `short:"c" type:"existingfile" help:"YAML configuration file."`
	Frames     string  `short:"f" help:"Frame directory holding timestamps.txt and the image folder."`
	Images     string  `help:"Image folder relative to the frame directory."`
	TOffset    string  `name:"t-offset" help:"Stream to wall clock offset in microseconds."`
	Downsample int     `short:"d" help:"Keep every Nth event."`
	Mode       string  `short:"m" help:"Viewer mode: 2d or 3d."`
	Speed      float64 `help:"Initial playback speed."`
	Window     float64 `help:"Initial time window in microseconds."`
	RGBAlpha   float64 `name:"rgb-alpha" default:"-1" help:"Initial RGB frame opacity (0-1)."`
	EventAlpha float64 `name:"event-alpha" default:"-1" help:"Initial event opacity (0-1)."`
	Depth      float64 `help:"Initial depth scale (3d)."`
	NoBox      bool    `name:"no-box" help:"Hide the bounding box (3d)."`
	PointSize  float32 `name:"point-size" help:"Event point size in pixels."`
	Width      int     `help:"Render width."`
	Height     int     `help:"Render height."`
	Sensor     string  `help:"Sensor resolution WxH. Inferred from the events when unset."`
	Cache      bool    `help:"Cache decoded events between runs."`
	CacheDir   string  `name:"cache-dir" help:"Cache directory."`
}

// Resolve loads the configuration file, if any, and applies the overrides.
func (o Overrides) Resolve() (Config, error) {
	cfg := DefaultConfig()
	if o.Config != "" {
		var err error
		if cfg, err = LoadConfig(o.Config); err != nil {
			return cfg, err
		}
	}
	if err := o.Apply(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Apply copies every set override into cfg.
func (o Overrides) Apply(cfg *Config) error {
	setString(&cfg.Events, o.Events)
	setString(&cfg.Frames.Dir, o.Frames)
	setString(&cfg.Frames.Images, o.Images)
	setString(&cfg.Viewer.Mode, o.Mode)
	setString(&cfg.Cache.Dir, o.CacheDir)
	if o.TOffset != "" {
		v, err := strconv.ParseInt(o.TOffset, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid --t-offset %q", o.TOffset)
		}
		cfg.TOffset = &v
	}
	if o.Sensor != "" {
		var w, h int
		if _, err := fmt.Sscanf(o.Sensor, "%dx%d", &w, &h); err != nil {
			return fmt.Errorf("invalid --sensor %q, want WxH", o.Sensor)
		}
		cfg.Resolution = ResolutionConfig{Width: w, Height: h}
	}
	if o.Downsample > 0 {
		cfg.Downsample = o.Downsample
	}
	if o.Speed > 0 {
		cfg.Viewer.Speed = o.Speed
	}
	if o.Window > 0 {
		cfg.Viewer.TimeWindowUS = &o.Window
	}
	if o.RGBAlpha >= 0 {
		cfg.Viewer.RGBAlpha = &o.RGBAlpha
	}
	if o.EventAlpha >= 0 {
		cfg.Viewer.EventAlpha = &o.EventAlpha
	}
	if o.Depth > 0 {
		cfg.Viewer.DepthScale = &o.Depth
	}
	if o.NoBox {
		off := false
		cfg.Viewer.BoundingBox = &off
	}
	if o.PointSize > 0 {
		cfg.Viewer.PointSize = o.PointSize
	}
	if o.Width > 0 {
		cfg.Viewer.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Viewer.Height = o.Height
	}
	if o.Cache {
		cfg.Cache.Enabled = true
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
