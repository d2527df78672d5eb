//go:build linux
// +build linux

// File: transport/tcp/peer_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"fmt"
	"io"

	"github.com/momentics/consolebridge/api"
	"golang.org/x/sys/unix"
)

// Peer is the single accepted, non-blocking connection.
type Peer struct {
	fd     int
	remote string
	closed bool
}

var _ api.PeerConn = (*Peer)(nil)

// Read reads whatever is buffered. It returns api.ErrWouldBlock when the
// socket is drained and io.EOF when the remote closed or reset the connection.
func (p *Peer) Read(b []byte) (int, error) {
	for {
		n, err := unix.Read(p.fd, b)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, api.ErrWouldBlock
		case err == unix.ECONNRESET:
			return 0, io.EOF
		case err != nil:
			return 0, fmt.Errorf("peer read: %w", err)
		case n == 0 && len(b) > 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

// WriteFull queues b in a single write. Anything less than a complete
// write fails with api.ErrSendBufferOverflow; output is never truncated
// silently. A write to a connection the remote already tore down fails
// with api.ErrPeerClosed.
func (p *Peer) WriteFull(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	var n int
	for {
		var err error
		n, err = unix.Write(p.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			n = 0
			break
		}
		if err == unix.EPIPE || err == unix.ECONNRESET {
			return api.Wrap(api.ErrCodeIO, "peer write", api.ErrPeerClosed).WithContext("errno", err.Error())
		}
		if err != nil {
			return fmt.Errorf("peer write: %w", err)
		}
		break
	}
	if n < len(b) {
		return api.Wrap(api.ErrCodeBufferOverflow,
			"peer write incomplete, increase the send buffer size",
			api.ErrSendBufferOverflow).
			WithContext("requested", len(b)).
			WithContext("written", n)
	}
	return nil
}

// Close releases the socket. With SO_LINGER set the kernel gets a short
// grace period to flush queued bytes.
func (p *Peer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.fd)
}

// RawFD returns the socket descriptor.
func (p *Peer) RawFD() int { return p.fd }

// RemoteAddr returns the remote agent's address.
func (p *Peer) RemoteAddr() string { return p.remote }
