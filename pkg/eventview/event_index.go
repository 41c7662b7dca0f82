package eventview

import (
	"cmp"
	"slices"
	"sort"
)

// EventIndex holds the immutable, time-sorted event set and answers
// windowed range queries in O(log n).
type EventIndex struct {
	events []Event
	t0     uint64
}

// BuildEventIndex takes ownership of events. Unsorted input is stably sorted
// by timestamp so events sharing a timestamp keep their load order.
func BuildEventIndex(events []Event) (*EventIndex, error) {
	if len(events) == 0 {
		return nil, ErrEmptyDataset
	}
	byTime := func(a, b Event) int { return cmp.Compare(a.T, b.T) }
	if !slices.IsSortedFunc(events, byTime) {
		slices.SortStableFunc(events, byTime)
	}
	return &EventIndex{events: events, t0: events[0].T}, nil
}

func (ix *EventIndex) Len() int { return len(ix.events) }

// Events returns the backing slice. Callers must not modify it.
func (ix *EventIndex) Events() []Event { return ix.events }

// FirstTimestamp is the raw timestamp of the earliest event.
func (ix *EventIndex) FirstTimestamp() uint64 { return ix.t0 }

// RelativeTime returns the timestamp of event i relative to the first event.
func (ix *EventIndex) RelativeTime(i int) float64 {
	return float64(ix.events[i].T - ix.t0)
}

// Duration is the relative timestamp of the last event.
func (ix *EventIndex) Duration() float64 {
	return ix.RelativeTime(len(ix.events) - 1)
}

// TimeWindow returns the contiguous index range [first, first+count) of the
// events whose relative timestamp lies in [start, end).
func (ix *EventIndex) TimeWindow(start, end float64) (first, count int) {
	n := len(ix.events)
	first = sort.Search(n, func(i int) bool {
		return ix.RelativeTime(i) >= start
	})
	if first == n {
		return n, 0
	}
	last := first + sort.Search(n-first, func(i int) bool {
		return ix.RelativeTime(first+i) >= end
	})
	return first, last - first
}

// Polarity counts the events of each polarity.
func (ix *EventIndex) Polarity() (on, off int) {
	for i := range ix.events {
		if ix.events[i].Polarity != 0 {
			on++
		} else {
			off++
		}
	}
	return on, off
}
