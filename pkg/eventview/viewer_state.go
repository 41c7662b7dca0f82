package eventview

import "math"

// DisplayMode selects which layers the composer draws.
type DisplayMode int

const (
	DisplayEventsAndRGB DisplayMode = iota
	DisplayEventsOnly
	DisplayRGBOnly
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayEventsAndRGB:
		return "Events and RGB"
	case DisplayEventsOnly:
		return "Events Only"
	case DisplayRGBOnly:
		return "RGB Only"
	}
	return "Unknown"
}

// Next returns the following mode in the fixed three-state cycle.
func (m DisplayMode) Next() DisplayMode {
	switch m {
	case DisplayEventsAndRGB:
		return DisplayEventsOnly
	case DisplayEventsOnly:
		return DisplayRGBOnly
	}
	return DisplayEventsAndRGB
}

func (m DisplayMode) ShowEvents() bool { return m != DisplayRGBOnly }

func (m DisplayMode) ShowRGB() bool { return m != DisplayEventsOnly }

const (
	speedStep       = 1.2
	windowStep      = 1.2
	depthStep       = 1.2
	alphaStep       = 0.05
	MinTimeWindowUS = 1000.0
	MinDepthScale   = 0.01
)

// ViewerState is the mutable display configuration of a session. All
// fields are plain values; the setters apply the numeric clamps.
type ViewerState struct {
	PlaybackSpeed   float64
	Paused          bool
	DisplayMode     DisplayMode
	RGBAlpha        float64
	EventAlpha      float64
	TimeWindowUS    float64
	DepthScale      float64
	ShowBoundingBox bool
}

func DefaultViewerState2D() ViewerState {
	return ViewerState{
		PlaybackSpeed: 1,
		DisplayMode:   DisplayEventsAndRGB,
		RGBAlpha:      0.7,
		EventAlpha:    1,
		TimeWindowUS:  20000,
		DepthScale:    1,
	}
}

func DefaultViewerState3D() ViewerState {
	return ViewerState{
		PlaybackSpeed:   1,
		DisplayMode:     DisplayEventsAndRGB,
		RGBAlpha:        0.8,
		EventAlpha:      1,
		TimeWindowUS:    2000000,
		DepthScale:      1,
		ShowBoundingBox: true,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (s *ViewerState) TogglePause() { s.Paused = !s.Paused }

func (s *ViewerState) CycleDisplayMode() { s.DisplayMode = s.DisplayMode.Next() }

func (s *ViewerState) ToggleBoundingBox() { s.ShowBoundingBox = !s.ShowBoundingBox }

// SpeedUp and SlowDown scale the playback speed; the sign never changes.
func (s *ViewerState) SpeedUp() { s.PlaybackSpeed *= speedStep }

func (s *ViewerState) SlowDown() { s.PlaybackSpeed /= speedStep }

func (s *ViewerState) SetRGBAlpha(v float64) { s.RGBAlpha = clamp01(v) }

func (s *ViewerState) SetEventAlpha(v float64) { s.EventAlpha = clamp01(v) }

func (s *ViewerState) AdjustRGBAlpha(steps int) {
	s.SetRGBAlpha(s.RGBAlpha + float64(steps)*alphaStep)
}

func (s *ViewerState) AdjustEventAlpha(steps int) {
	s.SetEventAlpha(s.EventAlpha + float64(steps)*alphaStep)
}

func (s *ViewerState) SetTimeWindow(us float64) {
	s.TimeWindowUS = math.Max(MinTimeWindowUS, us)
}

func (s *ViewerState) WidenWindow() { s.SetTimeWindow(s.TimeWindowUS * windowStep) }

func (s *ViewerState) NarrowWindow() { s.SetTimeWindow(s.TimeWindowUS / windowStep) }

func (s *ViewerState) SetDepthScale(v float64) {
	s.DepthScale = math.Max(MinDepthScale, v)
}

func (s *ViewerState) DeepenDepth() { s.SetDepthScale(s.DepthScale * depthStep) }

func (s *ViewerState) FlattenDepth() { s.SetDepthScale(s.DepthScale / depthStep) }
