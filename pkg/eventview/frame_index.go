package eventview

import (
	"cmp"
	"image"
	"slices"
	"sort"
)

// Texture is an opaque GPU image reference. *ebiten.Image satisfies it.
type Texture interface {
	Bounds() image.Rectangle
}

// Frame is a registered RGB image. Timestamp is absolute microseconds in the
// same epoch as the session base time. Image is nil when the file could not
// be loaded.
type Frame struct {
	Timestamp int64
	Path      string
	Image     Texture
}

// FrameIndex holds frames sorted by timestamp.
type FrameIndex struct {
	frames []Frame
}

func NewFrameIndex(frames []Frame) *FrameIndex {
	slices.SortStableFunc(frames, func(a, b Frame) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return &FrameIndex{frames: frames}
}

func (fi *FrameIndex) Len() int { return len(fi.frames) }

func (fi *FrameIndex) Frame(i int) Frame { return fi.frames[i] }

// upperBound is the first index whose timestamp is strictly greater than t.
func (fi *FrameIndex) upperBound(t float64) int {
	return sort.Search(len(fi.frames), func(i int) bool {
		return float64(fi.frames[i].Timestamp) > t
	})
}

// LatestIndexAt returns the index of the last frame with timestamp <= t, or
// -1 when t precedes every frame. Equal timestamps resolve to the frame
// inserted last.
func (fi *FrameIndex) LatestIndexAt(t float64) int {
	return fi.upperBound(t) - 1
}

// LatestAt returns the last frame with timestamp <= t.
func (fi *FrameIndex) LatestAt(t float64) (Frame, bool) {
	i := fi.LatestIndexAt(t)
	if i < 0 {
		return Frame{}, false
	}
	return fi.frames[i], true
}

// Recent returns the index range [first, first+count) of frames whose age
// now-timestamp lies in [0, window).
func (fi *FrameIndex) Recent(now, window float64) (first, count int) {
	last := fi.upperBound(now)
	lo := now - window
	first = sort.Search(last, func(i int) bool {
		return float64(fi.frames[i].Timestamp) > lo
	})
	return first, last - first
}
