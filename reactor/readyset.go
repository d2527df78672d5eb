// File: reactor/readyset.go
// Author: momentics <momentics@gmail.com>
//
// Accumulated readiness events of one poll pass.

package reactor

import "github.com/eapache/queue"

// ReadySet accumulates events across Poll calls until Clear is called.
// The loop consumes it in order and clears it explicitly after each pass.
type ReadySet struct {
	q *queue.Queue
}

// NewReadySet returns an empty set.
func NewReadySet() *ReadySet {
	return &ReadySet{q: queue.New()}
}

// Add appends an event.
func (s *ReadySet) Add(ev Event) {
	s.q.Add(ev)
}

// Len returns the number of pending events.
func (s *ReadySet) Len() int {
	return s.q.Length()
}

// At returns the i-th event in report order.
func (s *ReadySet) At(i int) Event {
	return s.q.Get(i).(Event)
}

// Clear drops every pending event.
func (s *ReadySet) Clear() {
	for s.q.Length() > 0 {
		s.q.Remove()
	}
}
