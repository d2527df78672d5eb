//go:build !linux
// +build !linux

// File: transport/tcp/listener_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package tcp

import (
	"fmt"

	"github.com/momentics/consolebridge/api"
)

// Listener is unavailable on this platform.
type Listener struct{}

// Peer is unavailable on this platform.
type Peer struct{}

// Listen returns an error for unsupported platforms.
func Listen(port int, opts PeerOptions) (*Listener, error) {
	return nil, api.Wrap(api.ErrCodeNotSupported, fmt.Sprintf("listen on port %d", port), api.ErrNotSupported)
}

func (l *Listener) Fd() int                { return -1 }
func (l *Listener) Port() int              { return 0 }
func (l *Listener) Addr() string           { return "" }
func (l *Listener) Accept() (*Peer, error) { return nil, api.ErrNotSupported }
func (l *Listener) Close() error           { return nil }
func (p *Peer) Read(b []byte) (int, error) { return 0, api.ErrNotSupported }
func (p *Peer) WriteFull(b []byte) error   { return api.ErrNotSupported }
func (p *Peer) Close() error               { return nil }
func (p *Peer) RawFD() int                 { return -1 }
func (p *Peer) RemoteAddr() string         { return "" }
