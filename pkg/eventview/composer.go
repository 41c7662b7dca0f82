package eventview

import (
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Action is a discrete viewer control.
type Action int

const (
	ActionTogglePause Action = iota
	ActionCycleDisplayMode
	ActionSpeedUp
	ActionSlowDown
	ActionWidenWindow
	ActionNarrowWindow
	ActionRGBAlphaUp
	ActionRGBAlphaDown
	ActionEventAlphaUp
	ActionEventAlphaDown
	ActionDepthUp
	ActionDepthDown
	ActionToggleBoundingBox
	ActionRestart
	ActionResetCamera
)

// InputSink receives typed input from the windowing layer.
type InputSink interface {
	OnDrag(dx, dy float32)
	OnScroll(delta float32)
	OnAction(a Action)
}

// ComposerState is Idle until a session is loaded.
type ComposerState int

const (
	ComposerIdle ComposerState = iota
	ComposerReady
)

// Status is a snapshot of the last rendered frame for overlays.
type Status struct {
	Elapsed        float64 // microseconds since base time
	Duration       float64 // relative timestamp of the last event
	Speed          float64
	WindowUS       float64
	Mode           DisplayMode
	Paused         bool
	EventsInWindow int
	FramesDrawn    int
	Strategy       string
}

// FrameComposer advances playback and issues the draw calls of each frame.
// It is driven from a single goroutine.
type FrameComposer struct {
	strategy  ProjectionStrategy
	camera    Camera
	state     ViewerState
	palette   Palette
	pointSize float32

	phase    ComposerState
	clock    *PlaybackClock
	session  *Session
	layers   []FrameLayer
	status   Status
	lastSize [2]int
}

func NewFrameComposer(strategy ProjectionStrategy, state ViewerState, palette Palette, pointSize float32) *FrameComposer {
	if pointSize <= 0 {
		pointSize = 2
	}
	return &FrameComposer{
		strategy:  strategy,
		camera:    strategy.NewCamera(),
		state:     state,
		palette:   palette,
		pointSize: pointSize,
		clock:     NewPlaybackClock(0),
	}
}

// Load attaches a session and starts playback at its base time.
func (c *FrameComposer) Load(s *Session) {
	c.session = s
	c.clock = NewPlaybackClock(s.BaseTime)
	c.phase = ComposerReady
}

func (c *FrameComposer) Phase() ComposerState { return c.phase }

func (c *FrameComposer) State() *ViewerState { return &c.state }

func (c *FrameComposer) Clock() *PlaybackClock { return c.clock }

func (c *FrameComposer) Camera() Camera { return c.camera }

func (c *FrameComposer) Status() Status { return c.status }

// Tick advances the playback clock by the measured wall delta.
func (c *FrameComposer) Tick(wallDelta time.Duration) {
	if c.phase != ComposerReady {
		return
	}
	c.clock.Advance(wallDelta, &c.state)
}

// EventWindow returns the event index range [now-window, now) in
// stream-relative time.
func (c *FrameComposer) EventWindow() (first, count int) {
	now := c.clock.Elapsed()
	return c.session.Events.TimeWindow(now-c.state.TimeWindowUS, now)
}

// Render draws the current frame onto canvas.
func (c *FrameComposer) Render(canvas Canvas) {
	canvas.Clear(c.palette.Background)
	if c.phase != ComposerReady {
		return
	}
	w, h := canvas.Size()
	c.SetViewport(w, h)
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	vp := c.camera.Projection(aspect).Mul4(c.camera.View())
	model := c.strategy.Model(&c.state)

	c.layers = c.layers[:0]
	if c.state.DisplayMode.ShowRGB() && c.session.Frames.Len() > 0 {
		c.layers = c.strategy.FrameLayers(c.layers, c.session.Frames, c.clock.Now(), &c.state)
	}

	c.status = Status{
		Elapsed:  c.clock.Elapsed(),
		Duration: c.session.Events.Duration(),
		Speed:    c.state.PlaybackSpeed,
		WindowUS: c.state.TimeWindowUS,
		Mode:     c.state.DisplayMode,
		Paused:   c.state.Paused,
		Strategy: c.strategy.Name(),
	}

	if c.strategy.FramesFirst() {
		c.drawFrames(canvas, vp)
		c.drawEvents(canvas, vp.Mul4(model))
	} else {
		c.drawEvents(canvas, vp.Mul4(model))
		c.drawFrames(canvas, vp)
	}
	if c.strategy.HasBoundingBox() && c.state.ShowBoundingBox {
		canvas.DrawLines(LineDraw{Segments: unitCube, MVP: vp.Mul4(model), Color: boundingBoxColor})
	}
}

func (c *FrameComposer) drawEvents(canvas Canvas, mvp mgl32.Mat4) {
	if !c.state.DisplayMode.ShowEvents() {
		return
	}
	first, count := c.EventWindow()
	c.status.EventsInWindow = count
	if count == 0 {
		return
	}
	shading, blend, depth := c.strategy.EventStyle()
	canvas.DrawEvents(EventDraw{
		Vertices:   c.session.Buffer.Vertices(first, count),
		MVP:        mvp,
		Shading:    shading,
		Blend:      blend,
		Now:        float32(c.clock.Elapsed()),
		Window:     float32(c.state.TimeWindowUS),
		Alpha:      float32(c.state.EventAlpha),
		DepthByAge: depth,
		Palette:    c.palette,
		PointSize:  c.pointSize,
	})
}

func (c *FrameComposer) drawFrames(canvas Canvas, vp mgl32.Mat4) {
	blend := BlendAlpha
	if c.strategy.FramesFirst() {
		blend = BlendOpaque
	}
	for _, l := range c.layers {
		if l.Frame.Image == nil {
			continue
		}
		canvas.DrawFrame(FrameDraw{
			Texture: l.Frame.Image,
			MVP:     vp.Mul4(l.Model),
			Alpha:   float32(c.state.RGBAlpha),
			Blend:   blend,
		})
		c.status.FramesDrawn++
	}
}

// SetViewport records the target size used by pan and aspect calculations.
func (c *FrameComposer) SetViewport(w, h int) {
	c.lastSize = [2]int{w, h}
}

func (c *FrameComposer) OnDrag(dx, dy float32) {
	c.camera.Drag(dx, dy, c.lastSize[0], c.lastSize[1])
}

func (c *FrameComposer) OnScroll(delta float32) {
	c.camera.Scroll(delta)
}

// OnAction applies a discrete control and logs the resulting state.
func (c *FrameComposer) OnAction(a Action) {
	s := &c.state
	switch a {
	case ActionTogglePause:
		s.TogglePause()
		if s.Paused {
			log.Println("--- Paused ---")
		} else {
			log.Println("--- Resumed ---")
		}
		return
	case ActionCycleDisplayMode:
		s.CycleDisplayMode()
		log.Printf("--- Mode: %s ---", s.DisplayMode)
		return
	case ActionToggleBoundingBox:
		if c.strategy.HasBoundingBox() {
			s.ToggleBoundingBox()
		}
		return
	case ActionRestart:
		c.clock.Restart()
		log.Println("--- Restarted ---")
		return
	case ActionResetCamera:
		c.camera.Reset()
		return
	case ActionSpeedUp:
		s.SpeedUp()
	case ActionSlowDown:
		s.SlowDown()
	case ActionWidenWindow:
		s.WidenWindow()
	case ActionNarrowWindow:
		s.NarrowWindow()
	case ActionRGBAlphaUp:
		s.AdjustRGBAlpha(1)
	case ActionRGBAlphaDown:
		s.AdjustRGBAlpha(-1)
	case ActionEventAlphaUp:
		s.AdjustEventAlpha(1)
	case ActionEventAlphaDown:
		s.AdjustEventAlpha(-1)
	case ActionDepthUp:
		s.DeepenDepth()
	case ActionDepthDown:
		s.FlattenDepth()
	default:
		return
	}
	log.Printf("Speed: %.2fx, Window: %.3fs, RGB alpha: %.2f, Event alpha: %.2f, Depth: %.2f",
		s.PlaybackSpeed, s.TimeWindowUS/1e6, s.RGBAlpha, s.EventAlpha, s.DepthScale)
}
