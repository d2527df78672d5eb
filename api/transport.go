// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the endpoint abstractions the reactor multiplexes: the single
// peer socket and the operator console.

package api

// PeerConn abstracts the accepted, non-blocking peer socket.
type PeerConn interface {
	// Read returns ErrWouldBlock when nothing is buffered and io.EOF
	// once the remote side has closed its write half.
	Read(p []byte) (n int, err error)

	// WriteFull queues all of p or fails with ErrSendBufferOverflow.
	WriteFull(p []byte) error

	// Close releases the socket. Calling it more than once is harmless.
	Close() error

	// RawFD returns the underlying OS-level file descriptor.
	RawFD() int

	// RemoteAddr is the textual address of the remote agent.
	RemoteAddr() string
}

// Console is the operator side of the relay.
type Console interface {
	// Available reports how many input bytes can be read without blocking.
	Available() (int, error)

	// Read consumes console input. Callers only read what Available reported.
	Read(p []byte) (int, error)

	// Write emits peer output verbatim and flushes it immediately.
	Write(p []byte) (int, error)
}
