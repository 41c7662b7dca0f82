package eventview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// Dataset is the output of the loading collaborators. Frame timestamps are
// in stream time and are shifted by TOffset when the session opens. A zero
// Resolution is inferred from the events.
type Dataset struct {
	Events     []Event
	TOffset    int64
	Frames     []Frame
	Resolution Resolution
}

// Session owns everything built once per dataset load.
type Session struct {
	Events     *EventIndex
	Frames     *FrameIndex
	Buffer     *EventBuffer
	Resolution Resolution
	BaseTime   float64 // absolute microseconds of the first event
}

// OpenSession builds the indexes and the shared event buffer. On failure
// after the buffer was registered, the registration is released before
// returning.
func OpenSession(ctx context.Context, ds Dataset, interop Interop, workers int) (*Session, error) {
	started := time.Now()
	events, err := BuildEventIndex(ds.Events)
	if err != nil {
		return nil, err
	}
	res := ds.Resolution
	if !res.Valid() {
		res = InferResolution(events.Events())
		log.Printf("[SESSION] Detected resolution: %s", res)
	}

	buf := NewEventBuffer(events.Len(), interop)
	if err := buf.Register(); err != nil {
		return nil, err
	}
	if err := buf.Upload(ctx, events, res, workers); err != nil {
		return nil, errors.Join(fmt.Errorf("upload events: %w", err), buf.Unregister())
	}

	for i := range ds.Frames {
		ds.Frames[i].Timestamp += ds.TOffset
	}
	s := &Session{
		Events:     events,
		Frames:     NewFrameIndex(ds.Frames),
		Buffer:     buf,
		Resolution: res,
		BaseTime:   float64(ds.TOffset) + float64(events.FirstTimestamp()),
	}
	log.Printf("[SESSION] %s events over %.3fs, %d frames, ready in %v",
		humanize.Comma(int64(events.Len())), events.Duration()/1e6, s.Frames.Len(), time.Since(started).Round(time.Millisecond))
	return s, nil
}

// Close releases the event buffer registration. It must run before the
// graphics context that owns the buffer goes away.
func (s *Session) Close() error {
	if !s.Buffer.Registered() {
		return nil
	}
	return s.Buffer.Unregister()
}
