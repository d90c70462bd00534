package models

import "github.com/gammazero/deque"

// RoutePoolEntry tracks one registered origin's position in the dispatcher:
// when it was last served, the locations still queued for it, and the
// contiguous subroute slice it was last assigned.
type RoutePoolEntry struct {
	LastAccess float64
	Queue      deque.Deque[Location]
	Subroute   []Location
}

// NewRoutePoolEntry builds a fresh entry with the given subroute copied
// verbatim into the queue, matching a freshly-registered origin.
func NewRoutePoolEntry(lastAccess float64, subroute []Location) *RoutePoolEntry {
	e := &RoutePoolEntry{LastAccess: lastAccess, Subroute: append([]Location(nil), subroute...)}
	for _, loc := range subroute {
		e.Queue.PushBack(loc)
	}
	return e
}

// QueueSlice returns the queue contents as a plain slice, front to back.
func (e *RoutePoolEntry) QueueSlice() []Location {
	out := make([]Location, e.Queue.Len())
	for i := 0; i < e.Queue.Len(); i++ {
		out[i] = e.Queue.At(i)
	}
	return out
}

// ResetQueue replaces the queue contents with locs, in order.
func (e *RoutePoolEntry) ResetQueue(locs []Location) {
	e.Queue.Clear()
	for _, loc := range locs {
		e.Queue.PushBack(loc)
	}
}
