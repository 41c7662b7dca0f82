package eventview

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RenderVertex is the fixed-size per-event record shared by the transform
// step and the draw path.
type RenderVertex struct {
	X, Y     float32 // normalized device coordinates, y up
	T        float32 // microseconds since the session base time
	Polarity uint8
	_        [3]byte
}

// Interop makes a vertex buffer visible to the graphics backend without a
// copy. Register and Unregister are each called exactly once, in that order.
type Interop interface {
	Register(buf []RenderVertex) error
	Unregister() error
}

const uploadChunk = 1 << 16

type bufferState int

const (
	bufferAllocated bufferState = iota
	bufferRegistered
	bufferReleased
)

// EventBuffer owns the device-visible vertex arena derived from an
// EventIndex. It is filled once and never re-uploaded.
type EventBuffer struct {
	vertices []RenderVertex
	interop  Interop
	state    bufferState
	uploaded bool
}

func NewEventBuffer(n int, interop Interop) *EventBuffer {
	return &EventBuffer{
		vertices: make([]RenderVertex, n),
		interop:  interop,
	}
}

func (b *EventBuffer) Len() int { return len(b.vertices) }

func (b *EventBuffer) Registered() bool { return b.state == bufferRegistered }

// Register hands the arena to the interop layer.
func (b *EventBuffer) Register() error {
	switch b.state {
	case bufferRegistered:
		return fmt.Errorf("%w: register called twice", ErrGPUInterop)
	case bufferReleased:
		return ErrBufferReleased
	}
	if err := b.interop.Register(b.vertices); err != nil {
		return fmt.Errorf("%w: register %d vertices: %v", ErrGPUInterop, len(b.vertices), err)
	}
	b.state = bufferRegistered
	return nil
}

// Unregister releases the interop registration. Only the first call after a
// successful Register reaches the interop layer.
func (b *EventBuffer) Unregister() error {
	switch b.state {
	case bufferAllocated:
		return ErrNotRegistered
	case bufferReleased:
		return ErrBufferReleased
	}
	b.state = bufferReleased
	if err := b.interop.Unregister(); err != nil {
		return fmt.Errorf("%w: unregister: %v", ErrGPUInterop, err)
	}
	return nil
}

// Upload transforms every event of ix into the arena using up to workers
// goroutines and returns after all of them have finished.
func (b *EventBuffer) Upload(ctx context.Context, ix *EventIndex, res Resolution, workers int) error {
	if b.state != bufferRegistered {
		return ErrNotRegistered
	}
	if b.uploaded {
		return ErrBufferUploaded
	}
	if ix.Len() != len(b.vertices) {
		return fmt.Errorf("event buffer holds %d vertices, index has %d events", len(b.vertices), ix.Len())
	}
	if !res.Valid() {
		return fmt.Errorf("invalid sensor resolution %s", res)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	events, t0 := ix.Events(), ix.FirstTimestamp()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(events); start += uploadChunk {
		end := min(start+uploadChunk, len(events))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				b.vertices[i] = ToRenderVertex(events[i], t0, res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	b.uploaded = true
	return nil
}

// Vertices returns the sub-range [first, first+count) of the arena.
func (b *EventBuffer) Vertices(first, count int) []RenderVertex {
	return b.vertices[first : first+count : first+count]
}

// ToRenderVertex maps sensor pixels to normalized device coordinates with
// the y axis flipped, and the timestamp to time since t0.
func ToRenderVertex(e Event, t0 uint64, res Resolution) RenderVertex {
	return RenderVertex{
		X:        float32(e.X)/float32(res.Width)*2 - 1,
		Y:        float32(e.Y)/float32(res.Height)*-2 + 1,
		T:        float32(e.T - t0),
		Polarity: e.Polarity,
	}
}
