//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import (
	"fmt"
	"time"

	"github.com/momentics/consolebridge/api"
	"golang.org/x/sys/unix"
)

const maxEvents = 64

// linuxReactor is a level-triggered epoll reactor. Interest that is not
// consumed stays armed, so write readiness is reasserted on every poll.
type linuxReactor struct {
	epfd      int
	interests map[int]Interest
	events    []unix.EpollEvent
	closed    bool
}

// NewReactor constructs a new platform-specific EventReactor for Linux.
func NewReactor() (EventReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &linuxReactor{
		epfd:      epfd,
		interests: make(map[int]Interest),
		events:    make([]unix.EpollEvent, maxEvents),
	}, nil
}

func epollMask(interest Interest) uint32 {
	var mask uint32
	if interest&(EventAccept|EventRead) != 0 {
		mask |= unix.EPOLLIN
	}
	if interest&EventWrite != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask
}

// Register adds file descriptor to epoll.
func (r *linuxReactor) Register(fd int, interest Interest) error {
	if r.closed {
		return api.ErrReactorClosed
	}
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add fd=%d: %w", fd, err)
	}
	r.interests[fd] = interest
	return nil
}

// Modify replaces the interest mask of fd.
func (r *linuxReactor) Modify(fd int, interest Interest) error {
	if r.closed {
		return api.ErrReactorClosed
	}
	if _, ok := r.interests[fd]; !ok {
		return fmt.Errorf("epoll ctl mod fd=%d: %w", fd, unix.ENOENT)
	}
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod fd=%d: %w", fd, err)
	}
	r.interests[fd] = interest
	return nil
}

// Unregister removes fd from the epoll watch list.
func (r *linuxReactor) Unregister(fd int) error {
	if r.closed {
		return api.ErrReactorClosed
	}
	delete(r.interests, fd)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del fd=%d: %w", fd, err)
	}
	return nil
}

// Poll waits for epoll events and appends them to ready.
func (r *linuxReactor) Poll(timeout time.Duration, ready *ReadySet) (int, error) {
	if r.closed {
		return 0, api.ErrReactorClosed
	}
	msec := -1
	if timeout >= 0 {
		msec = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(r.epfd, r.events, msec)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil // interrupted by signal, normal
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	added := 0
	for i := 0; i < n; i++ {
		raw := r.events[i]
		fd := int(raw.Fd)
		interest, ok := r.interests[fd]
		if !ok {
			continue
		}
		var got Interest
		// Hangup and error surface through the read path where the
		// handler observes EOF or the socket error itself.
		if raw.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			got |= interest & (EventAccept | EventRead)
		}
		if raw.Events&(unix.EPOLLOUT|unix.EPOLLERR) != 0 {
			got |= interest & EventWrite
		}
		if got == EventNone {
			continue
		}
		ready.Add(Event{Fd: fd, Ready: got})
		added++
	}
	return added, nil
}

// Close closes the epoll instance. Subsequent calls are no-ops.
func (r *linuxReactor) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.interests = nil
	return unix.Close(r.epfd)
}
