package eventview

import "time"

// PlaybackClock is the virtual playback position in absolute microseconds.
// It is owned by the render loop and never shared across goroutines.
type PlaybackClock struct {
	start float64
	now   float64
}

func NewPlaybackClock(start float64) *PlaybackClock {
	return &PlaybackClock{start: start, now: start}
}

func (c *PlaybackClock) Now() float64 { return c.now }

func (c *PlaybackClock) Start() float64 { return c.start }

// Elapsed is the playback position relative to the start.
func (c *PlaybackClock) Elapsed() float64 { return c.now - c.start }

// Advance moves the clock by the measured wall delta scaled by the playback
// speed. Nothing happens while the state is paused.
func (c *PlaybackClock) Advance(wallDelta time.Duration, state *ViewerState) {
	if state.Paused {
		return
	}
	c.now += wallDelta.Seconds() * 1_000_000 * state.PlaybackSpeed
}

// Restart jumps back to the start position.
func (c *PlaybackClock) Restart() { c.now = c.start }
