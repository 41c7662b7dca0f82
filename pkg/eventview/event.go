// Package eventview renders event-camera streams: a time-sorted event index,
// a shared vertex buffer built once per dataset, a virtual playback clock and
// the per-tick composer that turns all of it into draw calls.
package eventview

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset   = errors.New("dataset contains no events")
	ErrGPUInterop     = errors.New("gpu interop failure")
	ErrNotRegistered  = errors.New("event buffer is not registered")
	ErrBufferUploaded = errors.New("event buffer already uploaded")
	ErrBufferReleased = errors.New("event buffer already released")
)

// Event is a single brightness change reported by the sensor. T is in
// microseconds relative to the start of the recording.
type Event struct {
	X, Y     uint16
	Polarity uint8
	T        uint64
}

// Resolution is the sensor size in pixels.
type Resolution struct {
	Width, Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// InferResolution returns (max_x+1, max_y+1) over the events.
func InferResolution(events []Event) Resolution {
	if len(events) == 0 {
		return Resolution{}
	}
	var maxX, maxY uint16
	for i := range events {
		if events[i].X > maxX {
			maxX = events[i].X
		}
		if events[i].Y > maxY {
			maxY = events[i].Y
		}
	}
	return Resolution{Width: int(maxX) + 1, Height: int(maxY) + 1}
}

// TextureLoadWarning reports a frame image that could not be turned into a
// texture. The frame keeps its slot in the index but is never drawn.
type TextureLoadWarning struct {
	Index int
	Path  string
	Err   error
}

func (w TextureLoadWarning) Error() string {
	return fmt.Sprintf("frame %d (%s): texture load failed: %v", w.Index, w.Path, w.Err)
}

func (w TextureLoadWarning) Unwrap() error { return w.Err }
