// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness reactor interface.

package reactor

import (
	"strings"
	"time"
)

// Interest is a bitmask of the readiness kinds a descriptor is watched for.
type Interest uint32

const (
	EventAccept Interest = 1 << iota
	EventRead
	EventWrite
)

// EventNone clears every interest while keeping the descriptor registered.
const EventNone Interest = 0

func (i Interest) String() string {
	if i == EventNone {
		return "none"
	}
	var parts []string
	if i&EventAccept != 0 {
		parts = append(parts, "accept")
	}
	if i&EventRead != 0 {
		parts = append(parts, "read")
	}
	if i&EventWrite != 0 {
		parts = append(parts, "write")
	}
	return strings.Join(parts, "|")
}

// Event is one readiness notification. Ready is always a subset of the
// interest the descriptor carried when the poll returned.
type Event struct {
	Fd    int
	Ready Interest
}

// EventReactor defines basic reactor operations across OS platforms.
// Implementations are not safe for concurrent use; the owning loop is the
// only caller.
type EventReactor interface {
	// Register starts watching fd with the given interest.
	Register(fd int, interest Interest) error

	// Modify replaces the interest of an already registered fd.
	Modify(fd int, interest Interest) error

	// Unregister stops watching fd.
	Unregister(fd int) error

	// Poll waits up to timeout for readiness and appends the ready events to
	// ready. A negative timeout blocks indefinitely. It returns the number of
	// events appended.
	Poll(timeout time.Duration, ready *ReadySet) (int, error)

	// Close cleans up resources (epfd).
	Close() error
}
