//go:build linux
// +build linux

// File: transport/tcp/listener_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking localhost listener built on raw sockets.

package tcp

import (
	"fmt"
	"net/netip"

	"github.com/momentics/consolebridge/api"
	"golang.org/x/sys/unix"
)

// Listener is a bound, non-blocking server socket on 127.0.0.1.
type Listener struct {
	fd     int
	port   int
	opts   PeerOptions
	closed bool
}

// Listen creates the listening endpoint. Port 0 binds an ephemeral port;
// range checks belong to configuration validation, not here.
func Listen(port int, opts PeerOptions) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeBind, "socket create", err)
	}
	fail := func(step string, err error) (*Listener, error) {
		_ = unix.Close(fd)
		return nil, api.Wrap(api.ErrCodeBind, step, err).WithContext("port", port)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail("set SO_REUSEADDR", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		return fail("bind", err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		return fail("listen", err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return fail("getsockname", err)
	}
	bound := port
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		bound = in4.Port
	}
	return &Listener{fd: fd, port: bound, opts: opts}, nil
}

// Fd returns the descriptor to register with the reactor.
func (l *Listener) Fd() int { return l.fd }

// Port returns the bound port.
func (l *Listener) Port() int { return l.port }

// Addr returns the endpoint in host:port form.
func (l *Listener) Addr() string { return fmt.Sprintf("localhost:%d", l.port) }

// Accept takes one pending connection and applies PeerOptions to it.
// It returns api.ErrWouldBlock when nothing is pending.
func (l *Listener) Accept() (*Peer, error) {
	if l.closed {
		return nil, api.Wrap(api.ErrCodeAccept, "accept", unix.EBADF)
	}
	nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if isTransient(err) {
			return nil, api.ErrWouldBlock
		}
		return nil, api.Wrap(api.ErrCodeAccept, "accept", err)
	}
	if err := configurePeer(nfd, l.opts); err != nil {
		_ = unix.Close(nfd)
		return nil, api.Wrap(api.ErrCodeAccept, "configure peer", err)
	}
	return &Peer{fd: nfd, remote: sockaddrString(sa)}, nil
}

// Close closes the listening socket. Only the first call does any work.
func (l *Listener) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return unix.Close(l.fd)
}

func configurePeer(fd int, opts PeerOptions) error {
	if opts.LingerSeconds >= 0 {
		linger := &unix.Linger{Onoff: 1, Linger: int32(opts.LingerSeconds)}
		if err := unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, linger); err != nil {
			return fmt.Errorf("set SO_LINGER: %w", err)
		}
	}
	if opts.NoDelay {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			return fmt.Errorf("set TCP_NODELAY: %w", err)
		}
	}
	if opts.SendBufferSize > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, opts.SendBufferSize); err != nil {
			return fmt.Errorf("set SO_SNDBUF: %w", err)
		}
	}
	return nil
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)).String()
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port)).String()
	default:
		return "unknown"
	}
}
