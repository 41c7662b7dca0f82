package eventview

import (
	"image"
	"image/color"
)

type fakeInterop struct {
	calls         []string
	registered    []RenderVertex
	registerErr   error
	unregisterErr error
}

func (f *fakeInterop) Register(buf []RenderVertex) error {
	f.calls = append(f.calls, "register")
	f.registered = buf
	return f.registerErr
}

func (f *fakeInterop) Unregister() error {
	f.calls = append(f.calls, "unregister")
	return f.unregisterErr
}

type fakeTexture struct{ name string }

func (fakeTexture) Bounds() image.Rectangle { return image.Rect(0, 0, 4, 3) }

// recordingCanvas keeps every draw call of a frame.
type recordingCanvas struct {
	w, h   int
	clears []color.RGBA
	events []EventDraw
	frames []FrameDraw
	lines  []LineDraw
	order  []string
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{w: 640, h: 480}
}

func (c *recordingCanvas) Size() (int, int) { return c.w, c.h }

func (c *recordingCanvas) Clear(col color.RGBA) {
	c.clears = append(c.clears, col)
	c.order = append(c.order, "clear")
}

func (c *recordingCanvas) DrawEvents(d EventDraw) {
	c.events = append(c.events, d)
	c.order = append(c.order, "events")
}

func (c *recordingCanvas) DrawFrame(d FrameDraw) {
	c.frames = append(c.frames, d)
	c.order = append(c.order, "frame")
}

func (c *recordingCanvas) DrawLines(d LineDraw) {
	c.lines = append(c.lines, d)
	c.order = append(c.order, "lines")
}

func (c *recordingCanvas) reset() {
	*c = recordingCanvas{w: c.w, h: c.h}
}

func eventsAt(ts ...uint64) []Event {
	events := make([]Event, len(ts))
	for i, t := range ts {
		events[i] = Event{X: uint16(i), Y: uint16(i), Polarity: uint8(i % 2), T: t}
	}
	return events
}
